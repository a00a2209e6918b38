package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bdickey/b6/internal/calendar"
	"github.com/bdickey/b6/internal/models"
)

type TransportRepository interface {
	Find(ctx context.Context, date calendar.DateKey) (models.TransportOverride, error)
	FindInRange(ctx context.Context, start, end calendar.DateKey) ([]models.TransportOverride, error)
	Upsert(ctx context.Context, date calendar.DateKey, patch models.TransportPatch) (models.TransportOverride, error)
	DeleteBefore(ctx context.Context, date calendar.DateKey) (int64, error)
}

type SQLiteTransportRepository struct {
	database *sql.DB
}

func NewTransportRepository(database *sql.DB) *SQLiteTransportRepository {
	return &SQLiteTransportRepository{database: database}
}

const transportColumns = "date, am_person, pm_person, updated_at"

func scanOverride(row rowScanner) (models.TransportOverride, error) {
	var override models.TransportOverride
	err := row.Scan(&override.Date, &override.AMPerson, &override.PMPerson, &override.UpdatedAt)
	return override, err
}

func (repository *SQLiteTransportRepository) Find(ctx context.Context, date calendar.DateKey) (models.TransportOverride, error) {
	override, err := scanOverride(repository.database.QueryRowContext(ctx,
		"SELECT "+transportColumns+" FROM transport_overrides WHERE date = ?", date,
	))
	if err != nil {
		return models.TransportOverride{}, wrap("finding transport override", err)
	}
	return override, nil
}

func (repository *SQLiteTransportRepository) FindInRange(ctx context.Context, start, end calendar.DateKey) ([]models.TransportOverride, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+transportColumns+" FROM transport_overrides WHERE date >= ? AND date <= ? ORDER BY date",
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("finding transport overrides: %w", err)
	}
	defer rows.Close()

	var overrides []models.TransportOverride
	for rows.Next() {
		override, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transport override: %w", err)
		}
		overrides = append(overrides, override)
	}
	return overrides, rows.Err()
}

// Upsert writes only the slots set in the patch, so an AM edit never clears
// a PM value saved earlier. An empty string clears a slot.
func (repository *SQLiteTransportRepository) Upsert(ctx context.Context, date calendar.DateKey, patch models.TransportPatch) (models.TransportOverride, error) {
	date, err := calendar.ParseDateKey(string(date))
	if err != nil {
		return models.TransportOverride{}, fmt.Errorf("upserting transport override: %w", err)
	}

	_, err = repository.database.ExecContext(ctx,
		`INSERT INTO transport_overrides (date, am_person, pm_person, updated_at)
		VALUES (?, NULLIF(?, ''), NULLIF(?, ''), ?)
		ON CONFLICT(date) DO UPDATE SET
			am_person = CASE WHEN ? THEN NULLIF(?, '') ELSE am_person END,
			pm_person = CASE WHEN ? THEN NULLIF(?, '') ELSE pm_person END,
			updated_at = excluded.updated_at`,
		date, valueOrEmpty(patch.AMPerson), valueOrEmpty(patch.PMPerson), time.Now(),
		patch.AMPerson != nil, valueOrEmpty(patch.AMPerson),
		patch.PMPerson != nil, valueOrEmpty(patch.PMPerson),
	)
	if err != nil {
		return models.TransportOverride{}, fmt.Errorf("upserting transport override: %w", err)
	}
	return repository.Find(ctx, date)
}

func (repository *SQLiteTransportRepository) DeleteBefore(ctx context.Context, date calendar.DateKey) (int64, error) {
	result, err := repository.database.ExecContext(ctx, "DELETE FROM transport_overrides WHERE date < ?", date)
	if err != nil {
		return 0, fmt.Errorf("deleting old transport overrides: %w", err)
	}
	return result.RowsAffected()
}

func valueOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
