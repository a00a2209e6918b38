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

type EventRepository interface {
	FindByID(ctx context.Context, id string) (models.CalendarEvent, error)
	FindInRange(ctx context.Context, start, end calendar.DateKey) ([]models.CalendarEvent, error)
	FindAll(ctx context.Context) ([]models.CalendarEvent, error)
	Create(ctx context.Context, event models.CalendarEvent) (models.CalendarEvent, error)
	Update(ctx context.Context, event models.CalendarEvent) error
	Delete(ctx context.Context, id string) error
}

type SQLiteEventRepository struct {
	database *sql.DB
}

func NewEventRepository(database *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{database: database}
}

const eventColumns = "id, date, title, color_tag, notes, created_at, updated_at"

func scanEvent(row rowScanner) (models.CalendarEvent, error) {
	var event models.CalendarEvent
	err := row.Scan(&event.ID, &event.Date, &event.Title, &event.ColorTag, &event.Notes, &event.CreatedAt, &event.UpdatedAt)
	return event, err
}

func (repository *SQLiteEventRepository) FindByID(ctx context.Context, id string) (models.CalendarEvent, error) {
	event, err := scanEvent(repository.database.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM calendar_events WHERE id = ?", id,
	))
	if err != nil {
		return models.CalendarEvent{}, wrap("finding event by id", err)
	}
	return event, nil
}

func (repository *SQLiteEventRepository) FindInRange(ctx context.Context, start, end calendar.DateKey) ([]models.CalendarEvent, error) {
	return repository.query(ctx,
		"SELECT "+eventColumns+" FROM calendar_events WHERE date >= ? AND date <= ? ORDER BY date, created_at",
		start, end,
	)
}

func (repository *SQLiteEventRepository) FindAll(ctx context.Context) ([]models.CalendarEvent, error) {
	return repository.query(ctx, "SELECT "+eventColumns+" FROM calendar_events ORDER BY date, created_at")
}

func (repository *SQLiteEventRepository) query(ctx context.Context, query string, args ...any) ([]models.CalendarEvent, error) {
	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding events: %w", err)
	}
	defer rows.Close()

	var events []models.CalendarEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (repository *SQLiteEventRepository) Create(ctx context.Context, event models.CalendarEvent) (models.CalendarEvent, error) {
	date, err := calendar.ParseDateKey(string(event.Date))
	if err != nil {
		return models.CalendarEvent{}, fmt.Errorf("creating event: %w", err)
	}
	event.Date = date
	event.ColorTag = calendar.NormalizeColorTag(string(event.ColorTag))
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err = repository.database.ExecContext(ctx,
		"INSERT INTO calendar_events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		event.ID, event.Date, event.Title, event.ColorTag, event.Notes, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return models.CalendarEvent{}, fmt.Errorf("creating event: %w", err)
	}
	return event, nil
}

func (repository *SQLiteEventRepository) Update(ctx context.Context, event models.CalendarEvent) error {
	date, err := calendar.ParseDateKey(string(event.Date))
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	result, err := repository.database.ExecContext(ctx,
		"UPDATE calendar_events SET date = ?, title = ?, color_tag = ?, notes = ?, updated_at = ? WHERE id = ?",
		date, event.Title, calendar.NormalizeColorTag(string(event.ColorTag)), event.Notes, time.Now(), event.ID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	return requireAffected(result, "updating event")
}

func (repository *SQLiteEventRepository) Delete(ctx context.Context, id string) error {
	result, err := repository.database.ExecContext(ctx, "DELETE FROM calendar_events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return requireAffected(result, "deleting event")
}
