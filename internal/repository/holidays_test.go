package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bdickey/b6/internal/calendar"
	"github.com/bdickey/b6/internal/models"
	"github.com/bdickey/b6/internal/repository"
	"github.com/bdickey/b6/internal/testutil"
)

func TestHolidayRepository_FindOverlapping(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewHolidayRepository(db)
	ctx := context.Background()

	holidays := []models.Holiday{
		{Name: "Winter Break", StartDate: "2024-12-23", EndDate: "2025-01-03"},
		{Name: "Spring Break", StartDate: "2025-03-24", EndDate: "2025-03-28"},
		{Name: "Teacher Day", StartDate: "2025-02-14", EndDate: "2025-02-14"},
	}
	for _, holiday := range holidays {
		if _, err := repo.Create(ctx, holiday); err != nil {
			t.Fatalf("creating holiday: %v", err)
		}
	}

	tests := []struct {
		name     string
		start    calendar.DateKey
		end      calendar.DateKey
		expected int
	}{
		{"january catches the break spilling over", "2025-01-01", "2025-01-31", 1},
		{"march", "2025-03-01", "2025-03-31", 1},
		{"single day", "2025-02-14", "2025-02-14", 1},
		{"quiet month", "2025-05-01", "2025-05-31", 0},
		{"whole season", "2024-12-01", "2025-03-31", 3},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			found, err := repo.FindOverlapping(ctx, test.start, test.end)
			if err != nil {
				t.Fatalf("finding holidays: %v", err)
			}
			if len(found) != test.expected {
				t.Errorf("expected %d holidays, got %d", test.expected, len(found))
			}
		})
	}
}

func TestHolidayRepository_RejectsInvertedRange(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	repo := repository.NewHolidayRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, models.Holiday{Name: "Backwards", StartDate: "2025-03-28", EndDate: "2025-03-24"})
	if !errors.Is(err, repository.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	created, err := repo.Create(ctx, models.Holiday{Name: "One day", StartDate: "2025-03-24", EndDate: "2025-03-24"})
	if err != nil {
		t.Fatalf("creating single-day holiday: %v", err)
	}
	created.EndDate = "2025-03-01"
	if err := repo.Update(ctx, created); !errors.Is(err, repository.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange on update, got %v", err)
	}
}
