package repository

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/bdickey/b6/internal/models"
	"github.com/google/uuid"
)

type APITokenRepository interface {
	Issue(ctx context.Context, name string, scope models.TokenScope, userID string) (string, models.APIToken, error)
	Create(ctx context.Context, token models.APIToken) (models.APIToken, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (models.APIToken, error)
	FindByUserID(ctx context.Context, userID string) ([]models.APIToken, error)
	Delete(ctx context.Context, id string) error
}

type SQLiteAPITokenRepository struct {
	database *sql.DB
}

func NewAPITokenRepository(database *sql.DB) *SQLiteAPITokenRepository {
	return &SQLiteAPITokenRepository{database: database}
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Issue mints a random token, stores its hash and returns the raw value. The
// raw value is never stored.
func (repository *SQLiteAPITokenRepository) Issue(ctx context.Context, name string, scope models.TokenScope, userID string) (string, models.APIToken, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", models.APIToken{}, fmt.Errorf("generating token: %w", err)
	}
	raw := hex.EncodeToString(bytes)

	token, err := repository.Create(ctx, models.APIToken{
		Name:            name,
		TokenHash:       HashToken(raw),
		Scope:           scope,
		CreatedByUserID: userID,
	})
	if err != nil {
		return "", models.APIToken{}, err
	}
	return raw, token, nil
}

func (repository *SQLiteAPITokenRepository) Create(ctx context.Context, token models.APIToken) (models.APIToken, error) {
	if token.Scope == "" {
		token.Scope = models.TokenScopeAPI
	}
	if token.Scope != models.TokenScopeAPI && token.Scope != models.TokenScopeICal {
		return models.APIToken{}, fmt.Errorf("creating api token: scope %q: %w", token.Scope, ErrInvalid)
	}
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	token.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO api_tokens (id, name, token_hash, scope, created_by_user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		token.ID, token.Name, token.TokenHash, token.Scope, token.CreatedByUserID, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return models.APIToken{}, fmt.Errorf("creating api token: %w", err)
	}
	return token, nil
}

func scanToken(row rowScanner) (models.APIToken, error) {
	var token models.APIToken
	err := row.Scan(&token.ID, &token.Name, &token.TokenHash, &token.Scope, &token.CreatedByUserID, &token.ExpiresAt, &token.CreatedAt)
	return token, err
}

func (repository *SQLiteAPITokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (models.APIToken, error) {
	token, err := scanToken(repository.database.QueryRowContext(ctx,
		`SELECT id, name, token_hash, scope, created_by_user_id, expires_at, created_at
		FROM api_tokens WHERE token_hash = ?`, tokenHash,
	))
	if err != nil {
		return models.APIToken{}, wrap("finding token by hash", err)
	}
	return token, nil
}

func (repository *SQLiteAPITokenRepository) FindByUserID(ctx context.Context, userID string) ([]models.APIToken, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT id, name, token_hash, scope, created_by_user_id, expires_at, created_at
		FROM api_tokens WHERE created_by_user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding tokens by user: %w", err)
	}
	defer rows.Close()

	var tokens []models.APIToken
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

func (repository *SQLiteAPITokenRepository) Delete(ctx context.Context, id string) error {
	result, err := repository.database.ExecContext(ctx, "DELETE FROM api_tokens WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return requireAffected(result, "deleting token")
}
