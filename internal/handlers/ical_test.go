package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bdickey/b6/internal/config"
	"github.com/bdickey/b6/internal/middleware"
	"github.com/bdickey/b6/internal/models"
	"github.com/bdickey/b6/internal/repository"
	"github.com/bdickey/b6/internal/services"
	"github.com/bdickey/b6/internal/testutil"
	"github.com/go-chi/chi/v5"
)

type icalFixture struct {
	router    http.Handler
	tokenRepo *repository.SQLiteAPITokenRepository
	eventRepo *repository.SQLiteEventRepository
	userID    string
}

func setupICalHandler(t *testing.T) icalFixture {
	t.Helper()
	database := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewAPITokenRepository(database)
	eventRepo := repository.NewEventRepository(database)

	authService, err := services.NewAuthService(context.Background(), config.Config{SessionSecret: "test-secret", DevLogin: true}, userRepo, tokenRepo)
	if err != nil {
		t.Fatalf("creating auth service: %v", err)
	}
	user, err := authService.DevLogin(context.Background())
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	feedService := services.NewFeedService(services.FeedRepositories{
		Events:       eventRepo,
		FamilyEvents: repository.NewFamilyEventRepository(database),
		Programs:     repository.NewProgramRepository(database),
		Holidays:     repository.NewHolidayRepository(database),
		Bookings:     repository.NewBookingRepository(database),
		Settings:     repository.NewSettingsRepository(database),
	})

	router := chi.NewRouter()
	router.With(middleware.RequireQueryToken(authService, models.TokenScopeICal)).
		Get("/ical", NewICalHandler(feedService).Feed)

	return icalFixture{router: router, tokenRepo: tokenRepo, eventRepo: eventRepo, userID: user.ID}
}

func (fixture icalFixture) get(t *testing.T, url string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	fixture.router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, url, nil))
	return recorder
}

func TestICalHandler_ServesFeedForICalToken(t *testing.T) {
	fixture := setupICalHandler(t)
	ctx := context.Background()

	if _, err := fixture.eventRepo.Create(ctx, models.CalendarEvent{Date: "2025-03-12", Title: "Dentist"}); err != nil {
		t.Fatalf("creating event: %v", err)
	}
	raw, _, err := fixture.tokenRepo.Issue(ctx, "Phone", models.TokenScopeICal, fixture.userID)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	recorder := fixture.get(t, "/ical?token="+raw)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if contentType := recorder.Header().Get("Content-Type"); !strings.HasPrefix(contentType, "text/calendar") {
		t.Errorf("expected text/calendar, got %q", contentType)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "SUMMARY:Dentist") {
		t.Errorf("expected feed with the dentist event, got:\n%s", body)
	}
}

func TestICalHandler_RejectsApiScopedToken(t *testing.T) {
	fixture := setupICalHandler(t)

	raw, _, err := fixture.tokenRepo.Issue(context.Background(), "Script", models.TokenScopeAPI, fixture.userID)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}

	if recorder := fixture.get(t, "/ical?token="+raw); recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for api-scoped token, got %d", recorder.Code)
	}
}

func TestICalHandler_RejectsMissingToken(t *testing.T) {
	fixture := setupICalHandler(t)

	if recorder := fixture.get(t, "/ical"); recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", recorder.Code)
	}
}
