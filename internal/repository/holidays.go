package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bdickey/b6/internal/calendar"
	"github.com/bdickey/b6/internal/models"
	"github.com/google/uuid"
)

var ErrInvalidRange = errors.New("end date before start date")

type HolidayRepository interface {
	FindByID(ctx context.Context, id string) (models.Holiday, error)
	FindAll(ctx context.Context) ([]models.Holiday, error)
	FindOverlapping(ctx context.Context, start, end calendar.DateKey) ([]models.Holiday, error)
	Create(ctx context.Context, holiday models.Holiday) (models.Holiday, error)
	Update(ctx context.Context, holiday models.Holiday) error
	Delete(ctx context.Context, id string) error
}

type SQLiteHolidayRepository struct {
	database *sql.DB
}

func NewHolidayRepository(database *sql.DB) *SQLiteHolidayRepository {
	return &SQLiteHolidayRepository{database: database}
}

const holidayColumns = "id, name, start_date, end_date, created_at"

func scanHoliday(row rowScanner) (models.Holiday, error) {
	var holiday models.Holiday
	err := row.Scan(&holiday.ID, &holiday.Name, &holiday.StartDate, &holiday.EndDate, &holiday.CreatedAt)
	return holiday, err
}

func validateHolidayRange(holiday models.Holiday) (models.Holiday, error) {
	start, err := calendar.ParseDateKey(string(holiday.StartDate))
	if err != nil {
		return holiday, err
	}
	end, err := calendar.ParseDateKey(string(holiday.EndDate))
	if err != nil {
		return holiday, err
	}
	if end.Compare(start) < 0 {
		return holiday, fmt.Errorf("%s to %s: %w", start, end, ErrInvalidRange)
	}
	holiday.StartDate = start
	holiday.EndDate = end
	return holiday, nil
}

func (repository *SQLiteHolidayRepository) FindByID(ctx context.Context, id string) (models.Holiday, error) {
	holiday, err := scanHoliday(repository.database.QueryRowContext(ctx,
		"SELECT "+holidayColumns+" FROM holidays WHERE id = ?", id,
	))
	if err != nil {
		return models.Holiday{}, wrap("finding holiday by id", err)
	}
	return holiday, nil
}

func (repository *SQLiteHolidayRepository) FindAll(ctx context.Context) ([]models.Holiday, error) {
	return repository.query(ctx, "SELECT "+holidayColumns+" FROM holidays ORDER BY start_date, created_at")
}

// FindOverlapping returns holidays whose inclusive range touches [start, end].
func (repository *SQLiteHolidayRepository) FindOverlapping(ctx context.Context, start, end calendar.DateKey) ([]models.Holiday, error) {
	return repository.query(ctx,
		"SELECT "+holidayColumns+" FROM holidays WHERE start_date <= ? AND end_date >= ? ORDER BY start_date, created_at",
		end, start,
	)
}

func (repository *SQLiteHolidayRepository) query(ctx context.Context, query string, args ...any) ([]models.Holiday, error) {
	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding holidays: %w", err)
	}
	defer rows.Close()

	var holidays []models.Holiday
	for rows.Next() {
		holiday, err := scanHoliday(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning holiday: %w", err)
		}
		holidays = append(holidays, holiday)
	}
	return holidays, rows.Err()
}

func (repository *SQLiteHolidayRepository) Create(ctx context.Context, holiday models.Holiday) (models.Holiday, error) {
	holiday, err := validateHolidayRange(holiday)
	if err != nil {
		return models.Holiday{}, fmt.Errorf("creating holiday: %w", err)
	}
	if holiday.ID == "" {
		holiday.ID = uuid.New().String()
	}
	holiday.CreatedAt = time.Now()

	_, err = repository.database.ExecContext(ctx,
		"INSERT INTO holidays ("+holidayColumns+") VALUES (?, ?, ?, ?, ?)",
		holiday.ID, holiday.Name, holiday.StartDate, holiday.EndDate, holiday.CreatedAt,
	)
	if err != nil {
		return models.Holiday{}, fmt.Errorf("creating holiday: %w", err)
	}
	return holiday, nil
}

func (repository *SQLiteHolidayRepository) Update(ctx context.Context, holiday models.Holiday) error {
	holiday, err := validateHolidayRange(holiday)
	if err != nil {
		return fmt.Errorf("updating holiday: %w", err)
	}
	result, err := repository.database.ExecContext(ctx,
		"UPDATE holidays SET name = ?, start_date = ?, end_date = ? WHERE id = ?",
		holiday.Name, holiday.StartDate, holiday.EndDate, holiday.ID,
	)
	if err != nil {
		return fmt.Errorf("updating holiday: %w", err)
	}
	return requireAffected(result, "updating holiday")
}

func (repository *SQLiteHolidayRepository) Delete(ctx context.Context, id string) error {
	result, err := repository.database.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting holiday: %w", err)
	}
	return requireAffected(result, "deleting holiday")
}
