package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bdickey/b6/internal/models"
	"github.com/google/uuid"
)

// SitterPalette is handed out in order as sitters are added.
var SitterPalette = []string{
	"#E57373", "#F06292", "#BA68C8", "#64B5F6",
	"#4DB6AC", "#81C784", "#FFB74D", "#A1887F",
}

type SitterRepository interface {
	FindByID(ctx context.Context, id string) (models.Sitter, error)
	FindAll(ctx context.Context) ([]models.Sitter, error)
	Create(ctx context.Context, sitter models.Sitter) (models.Sitter, error)
	Update(ctx context.Context, sitter models.Sitter) error
	Delete(ctx context.Context, id string) error
}

type SQLiteSitterRepository struct {
	database *sql.DB
}

func NewSitterRepository(database *sql.DB) *SQLiteSitterRepository {
	return &SQLiteSitterRepository{database: database}
}

const sitterColumns = "id, name, contact, rate_per_hour, rating, color, notes, created_at"

func scanSitter(row rowScanner) (models.Sitter, error) {
	var sitter models.Sitter
	err := row.Scan(
		&sitter.ID, &sitter.Name, &sitter.Contact, &sitter.RatePerHour,
		&sitter.Rating, &sitter.Color, &sitter.Notes, &sitter.CreatedAt,
	)
	return sitter, err
}

func (repository *SQLiteSitterRepository) FindByID(ctx context.Context, id string) (models.Sitter, error) {
	sitter, err := scanSitter(repository.database.QueryRowContext(ctx,
		"SELECT "+sitterColumns+" FROM sitters WHERE id = ?", id,
	))
	if err != nil {
		return models.Sitter{}, wrap("finding sitter by id", err)
	}
	return sitter, nil
}

func (repository *SQLiteSitterRepository) FindAll(ctx context.Context) ([]models.Sitter, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+sitterColumns+" FROM sitters ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("finding sitters: %w", err)
	}
	defer rows.Close()

	var sitters []models.Sitter
	for rows.Next() {
		sitter, err := scanSitter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sitter: %w", err)
		}
		sitters = append(sitters, sitter)
	}
	return sitters, rows.Err()
}

func (repository *SQLiteSitterRepository) Create(ctx context.Context, sitter models.Sitter) (models.Sitter, error) {
	if sitter.Color == "" {
		var count int
		if err := repository.database.QueryRowContext(ctx, "SELECT COUNT(*) FROM sitters").Scan(&count); err != nil {
			return models.Sitter{}, fmt.Errorf("counting sitters: %w", err)
		}
		sitter.Color = SitterPalette[count%len(SitterPalette)]
	}
	if sitter.ID == "" {
		sitter.ID = uuid.New().String()
	}
	sitter.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO sitters ("+sitterColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		sitter.ID, sitter.Name, sitter.Contact, sitter.RatePerHour,
		sitter.Rating, sitter.Color, sitter.Notes, sitter.CreatedAt,
	)
	if err != nil {
		return models.Sitter{}, fmt.Errorf("creating sitter: %w", err)
	}
	return sitter, nil
}

func (repository *SQLiteSitterRepository) Update(ctx context.Context, sitter models.Sitter) error {
	result, err := repository.database.ExecContext(ctx,
		"UPDATE sitters SET name = ?, contact = ?, rate_per_hour = ?, rating = ?, color = ?, notes = ? WHERE id = ?",
		sitter.Name, sitter.Contact, sitter.RatePerHour, sitter.Rating, sitter.Color, sitter.Notes, sitter.ID,
	)
	if err != nil {
		return fmt.Errorf("updating sitter: %w", err)
	}
	return requireAffected(result, "updating sitter")
}

func (repository *SQLiteSitterRepository) Delete(ctx context.Context, id string) error {
	result, err := repository.database.ExecContext(ctx, "DELETE FROM sitters WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting sitter: %w", err)
	}
	return requireAffected(result, "deleting sitter")
}
