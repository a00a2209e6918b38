package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bdickey/b6/internal/calendar"
	"github.com/bdickey/b6/internal/models"
	"github.com/google/uuid"
)

type ProgramRepository interface {
	FindByID(ctx context.Context, id string) (models.Program, error)
	FindAll(ctx context.Context) ([]models.Program, error)
	Create(ctx context.Context, program models.Program) (models.Program, error)
	Update(ctx context.Context, program models.Program) error
	UpdateStatus(ctx context.Context, id string, status calendar.ProgramStatus) error
	Delete(ctx context.Context, id string) error
}

type SQLiteProgramRepository struct {
	database *sql.DB
}

func NewProgramRepository(database *sql.DB) *SQLiteProgramRepository {
	return &SQLiteProgramRepository{database: database}
}

const programColumns = "id, name, day_time, schedule_days, start_time, end_time, location, cost, status, created_at, updated_at"

func scanProgram(row rowScanner) (models.Program, error) {
	var program models.Program
	var scheduleDays sql.NullString
	err := row.Scan(
		&program.ID, &program.Name, &program.DayTime, &scheduleDays,
		&program.StartTime, &program.EndTime, &program.Location, &program.Cost,
		&program.Status, &program.CreatedAt, &program.UpdatedAt,
	)
	if err != nil {
		return models.Program{}, err
	}
	if scheduleDays.Valid && scheduleDays.String != "" {
		if err := json.Unmarshal([]byte(scheduleDays.String), &program.ScheduleDays); err != nil {
			return models.Program{}, fmt.Errorf("decoding schedule days: %w", err)
		}
	}
	return program, nil
}

func encodeScheduleDays(days []string) (sql.NullString, error) {
	if len(days) == 0 {
		return sql.NullString{}, nil
	}
	for _, day := range days {
		if _, ok := calendar.ParseWeekday(day); !ok {
			return sql.NullString{}, fmt.Errorf("schedule day %q: %w", day, ErrInvalid)
		}
	}
	encoded, err := json.Marshal(days)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(encoded), Valid: true}, nil
}

func (repository *SQLiteProgramRepository) FindByID(ctx context.Context, id string) (models.Program, error) {
	program, err := scanProgram(repository.database.QueryRowContext(ctx,
		"SELECT "+programColumns+" FROM afterschool_programs WHERE id = ?", id,
	))
	if err != nil {
		return models.Program{}, wrap("finding program by id", err)
	}
	return program, nil
}

func (repository *SQLiteProgramRepository) FindAll(ctx context.Context) ([]models.Program, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+programColumns+" FROM afterschool_programs ORDER BY name, created_at",
	)
	if err != nil {
		return nil, fmt.Errorf("finding programs: %w", err)
	}
	defer rows.Close()

	var programs []models.Program
	for rows.Next() {
		program, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		programs = append(programs, program)
	}
	return programs, rows.Err()
}

func (repository *SQLiteProgramRepository) Create(ctx context.Context, program models.Program) (models.Program, error) {
	if program.Status == "" {
		program.Status = calendar.ProgramConsider
	}
	if !program.Status.Valid() {
		return models.Program{}, fmt.Errorf("creating program: status %q: %w", program.Status, ErrInvalid)
	}
	scheduleDays, err := encodeScheduleDays(program.ScheduleDays)
	if err != nil {
		return models.Program{}, fmt.Errorf("creating program: %w", err)
	}
	if program.ID == "" {
		program.ID = uuid.New().String()
	}
	now := time.Now()
	program.CreatedAt = now
	program.UpdatedAt = now

	_, err = repository.database.ExecContext(ctx,
		"INSERT INTO afterschool_programs ("+programColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		program.ID, program.Name, program.DayTime, scheduleDays,
		program.StartTime, program.EndTime, program.Location, program.Cost,
		program.Status, program.CreatedAt, program.UpdatedAt,
	)
	if err != nil {
		return models.Program{}, fmt.Errorf("creating program: %w", err)
	}
	return program, nil
}

func (repository *SQLiteProgramRepository) Update(ctx context.Context, program models.Program) error {
	if !program.Status.Valid() {
		return fmt.Errorf("updating program: status %q: %w", program.Status, ErrInvalid)
	}
	scheduleDays, err := encodeScheduleDays(program.ScheduleDays)
	if err != nil {
		return fmt.Errorf("updating program: %w", err)
	}
	result, err := repository.database.ExecContext(ctx,
		`UPDATE afterschool_programs SET name = ?, day_time = ?, schedule_days = ?,
			start_time = ?, end_time = ?, location = ?, cost = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		program.Name, program.DayTime, scheduleDays,
		program.StartTime, program.EndTime, program.Location, program.Cost,
		program.Status, time.Now(), program.ID,
	)
	if err != nil {
		return fmt.Errorf("updating program: %w", err)
	}
	return requireAffected(result, "updating program")
}

func (repository *SQLiteProgramRepository) UpdateStatus(ctx context.Context, id string, status calendar.ProgramStatus) error {
	result, err := repository.database.ExecContext(ctx,
		"UPDATE afterschool_programs SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating program status: %w", err)
	}
	return requireAffected(result, "updating program status")
}

func (repository *SQLiteProgramRepository) Delete(ctx context.Context, id string) error {
	result, err := repository.database.ExecContext(ctx, "DELETE FROM afterschool_programs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting program: %w", err)
	}
	return requireAffected(result, "deleting program")
}
