package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bdickey/b6/internal/models"
	"github.com/google/uuid"
)

// UserRepository stores the household members who can sign in and mint tokens.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByOIDCSubject(ctx context.Context, subject string) (models.User, error)
	Create(ctx context.Context, user models.User) (models.User, error)
	UpdateProfile(ctx context.Context, id string, name string, email string, avatarURL string) error
	Count(ctx context.Context) (int, error)
}

type SQLiteUserRepository struct {
	database *sql.DB
}

func NewUserRepository(database *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{database: database}
}

const userColumns = "id, oidc_subject, email, name, avatar_url, role, created_at, updated_at"

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.OIDCSubject, &user.Email, &user.Name, &user.AvatarURL, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (repository *SQLiteUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	user, err := scanUser(repository.database.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id,
	))
	if err != nil {
		return models.User{}, wrap("finding user by id", err)
	}
	return user, nil
}

func (repository *SQLiteUserRepository) FindByOIDCSubject(ctx context.Context, subject string) (models.User, error) {
	user, err := scanUser(repository.database.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE oidc_subject = ?", subject,
	))
	if err != nil {
		return models.User{}, wrap("finding user by oidc subject", err)
	}
	return user, nil
}

func (repository *SQLiteUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.OIDCSubject, user.Email, user.Name, user.AvatarURL, user.Role, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (repository *SQLiteUserRepository) UpdateProfile(ctx context.Context, id string, name string, email string, avatarURL string) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ?, avatar_url = ?, updated_at = ? WHERE id = ?",
		name, email, avatarURL, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}
	return nil
}

func (repository *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := repository.database.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}
