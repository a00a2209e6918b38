package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bdickey/b6/internal/calendar"
)

const (
	SettingHouseholdName = "household_name"
	SettingCarpoolMatrix = "carpool_matrix"
	SettingCarpoolText   = "carpool_text"
)

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	CarpoolMatrix(ctx context.Context) (calendar.CarpoolMatrix, error)
	SetCarpoolMatrix(ctx context.Context, matrix calendar.CarpoolMatrix) error
}

type SQLiteSettingsRepository struct {
	database *sql.DB
}

func NewSettingsRepository(database *sql.DB) *SQLiteSettingsRepository {
	return &SQLiteSettingsRepository{database: database}
}

func (repository *SQLiteSettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := repository.database.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", key,
	).Scan(&value)
	if err != nil {
		return "", wrap("getting setting "+key, err)
	}
	return value, nil
}

func (repository *SQLiteSettingsRepository) Set(ctx context.Context, key string, value string) error {
	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// CarpoolMatrix returns the stored default matrix, or an empty one when none
// has been saved yet.
func (repository *SQLiteSettingsRepository) CarpoolMatrix(ctx context.Context) (calendar.CarpoolMatrix, error) {
	value, err := repository.Get(ctx, SettingCarpoolMatrix)
	if errors.Is(err, ErrNotFound) {
		return calendar.CarpoolMatrix{}, nil
	}
	if err != nil {
		return nil, err
	}

	var named map[string]calendar.Assignment
	if err := json.Unmarshal([]byte(value), &named); err != nil {
		return nil, fmt.Errorf("decoding carpool matrix: %w", err)
	}
	return calendar.CarpoolMatrixFromNames(named)
}

func (repository *SQLiteSettingsRepository) SetCarpoolMatrix(ctx context.Context, matrix calendar.CarpoolMatrix) error {
	encoded, err := json.Marshal(matrix.Names())
	if err != nil {
		return fmt.Errorf("encoding carpool matrix: %w", err)
	}
	return repository.Set(ctx, SettingCarpoolMatrix, string(encoded))
}
