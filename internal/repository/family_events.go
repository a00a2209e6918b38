package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bdickey/b6/internal/calendar"
	"github.com/bdickey/b6/internal/models"
	"github.com/google/uuid"
)

type FamilyEventRepository interface {
	FindByID(ctx context.Context, id string) (models.FamilyEvent, error)
	FindInRange(ctx context.Context, start, end calendar.DateKey) ([]models.FamilyEvent, error)
	FindAll(ctx context.Context) ([]models.FamilyEvent, error)
	Create(ctx context.Context, event models.FamilyEvent) (models.FamilyEvent, error)
	Update(ctx context.Context, event models.FamilyEvent) error
	Delete(ctx context.Context, id string) error
}

type SQLiteFamilyEventRepository struct {
	database *sql.DB
}

func NewFamilyEventRepository(database *sql.DB) *SQLiteFamilyEventRepository {
	return &SQLiteFamilyEventRepository{database: database}
}

const familyEventColumns = "id, date, name, who, notes, created_at, updated_at"

func scanFamilyEvent(row rowScanner) (models.FamilyEvent, error) {
	var event models.FamilyEvent
	err := row.Scan(&event.ID, &event.Date, &event.Name, &event.Who, &event.Notes, &event.CreatedAt, &event.UpdatedAt)
	return event, err
}

func (repository *SQLiteFamilyEventRepository) FindByID(ctx context.Context, id string) (models.FamilyEvent, error) {
	event, err := scanFamilyEvent(repository.database.QueryRowContext(ctx,
		"SELECT "+familyEventColumns+" FROM family_events WHERE id = ?", id,
	))
	if err != nil {
		return models.FamilyEvent{}, wrap("finding family event by id", err)
	}
	return event, nil
}

func (repository *SQLiteFamilyEventRepository) FindInRange(ctx context.Context, start, end calendar.DateKey) ([]models.FamilyEvent, error) {
	return repository.query(ctx,
		"SELECT "+familyEventColumns+" FROM family_events WHERE date >= ? AND date <= ? ORDER BY date, created_at",
		start, end,
	)
}

func (repository *SQLiteFamilyEventRepository) FindAll(ctx context.Context) ([]models.FamilyEvent, error) {
	return repository.query(ctx, "SELECT "+familyEventColumns+" FROM family_events ORDER BY date, created_at")
}

func (repository *SQLiteFamilyEventRepository) query(ctx context.Context, query string, args ...any) ([]models.FamilyEvent, error) {
	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding family events: %w", err)
	}
	defer rows.Close()

	var events []models.FamilyEvent
	for rows.Next() {
		event, err := scanFamilyEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning family event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (repository *SQLiteFamilyEventRepository) Create(ctx context.Context, event models.FamilyEvent) (models.FamilyEvent, error) {
	date, err := calendar.ParseDateKey(string(event.Date))
	if err != nil {
		return models.FamilyEvent{}, fmt.Errorf("creating family event: %w", err)
	}
	event.Date = date
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err = repository.database.ExecContext(ctx,
		"INSERT INTO family_events ("+familyEventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		event.ID, event.Date, event.Name, event.Who, event.Notes, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return models.FamilyEvent{}, fmt.Errorf("creating family event: %w", err)
	}
	return event, nil
}

func (repository *SQLiteFamilyEventRepository) Update(ctx context.Context, event models.FamilyEvent) error {
	date, err := calendar.ParseDateKey(string(event.Date))
	if err != nil {
		return fmt.Errorf("updating family event: %w", err)
	}
	result, err := repository.database.ExecContext(ctx,
		"UPDATE family_events SET date = ?, name = ?, who = ?, notes = ?, updated_at = ? WHERE id = ?",
		date, event.Name, event.Who, event.Notes, time.Now(), event.ID,
	)
	if err != nil {
		return fmt.Errorf("updating family event: %w", err)
	}
	return requireAffected(result, "updating family event")
}

func (repository *SQLiteFamilyEventRepository) Delete(ctx context.Context, id string) error {
	result, err := repository.database.ExecContext(ctx, "DELETE FROM family_events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting family event: %w", err)
	}
	return requireAffected(result, "deleting family event")
}
