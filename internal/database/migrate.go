package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version  int
	filename string
}

func Migrate(database *sql.DB) error {
	return MigrateContext(context.Background(), database)
}

func MigrateContext(ctx context.Context, database *sql.DB) error {
	if _, err := database.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	migrations, err := upMigrations()
	if err != nil {
		return err
	}

	for _, next := range migrations {
		var applied int
		err := database.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", next.version,
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("checking migration %d: %w", next.version, err)
		}
		if applied > 0 {
			continue
		}

		if err := apply(ctx, database, next); err != nil {
			return err
		}
		slog.Info("applied migration", "version", next.version, "file", next.filename)
	}

	return nil
}

func apply(ctx context.Context, database *sql.DB, next migration) error {
	content, err := migrationsFS.ReadFile("migrations/" + next.filename)
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", next.filename, err)
	}

	transaction, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction for migration %d: %w", next.version, err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("executing migration %s: %w", next.filename, err)
	}
	if _, err := transaction.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", next.version); err != nil {
		return fmt.Errorf("recording migration %d: %w", next.version, err)
	}

	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("committing migration %d: %w", next.version, err)
	}
	return nil
}

func upMigrations() ([]migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, found := strings.Cut(name, "_")
		if !found {
			return nil, fmt.Errorf("migration %s has no version prefix", name)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("parsing version of migration %s: %w", name, err)
		}
		migrations = append(migrations, migration{version: version, filename: name})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations, nil
}
