package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bdickey/b6/internal/models"
	"github.com/bdickey/b6/internal/repository"
	"github.com/bdickey/b6/internal/testutil"
)

func createTestUser(t *testing.T, repo repository.UserRepository) models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), models.User{
		OIDCSubject: "test-subject",
		Email:       "parent@example.com",
		Name:        "Test Parent",
		Role:        models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

func TestUserRepository_CreateAndFindByID(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.User{
		OIDCSubject: "sub-123",
		Email:       "test@example.com",
		Name:        "Test User",
		Role:        models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected non-empty ID")
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("finding user: %v", err)
	}
	if found.Name != "Test User" {
		t.Errorf("expected name 'Test User', got '%s'", found.Name)
	}
	if found.Role != models.RoleAdmin {
		t.Errorf("expected role admin, got '%s'", found.Role)
	}
}

func TestUserRepository_FindByOIDCSubject(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	createTestUser(t, repo)

	found, err := repo.FindByOIDCSubject(ctx, "test-subject")
	if err != nil {
		t.Fatalf("finding user by subject: %v", err)
	}
	if found.Email != "parent@example.com" {
		t.Errorf("expected email 'parent@example.com', got '%s'", found.Email)
	}

	_, err = repo.FindByOIDCSubject(ctx, "nobody")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, repo)
	if err := repo.UpdateProfile(ctx, user.ID, "Renamed", "new@example.com", ""); err != nil {
		t.Fatalf("updating profile: %v", err)
	}

	found, _ := repo.FindByID(ctx, user.ID)
	if found.Name != "Renamed" || found.Email != "new@example.com" {
		t.Errorf("expected updated profile, got %+v", found)
	}
}

func TestUserRepository_Count(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("counting users: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 users, got %d", count)
	}

	createTestUser(t, repo)

	count, err = repo.Count(ctx)
	if err != nil {
		t.Fatalf("counting users: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}
}
