package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bdickey/b6/internal/models"
)

type fakeAuth struct {
	sessionUser *models.User
	tokens      map[string]models.TokenScope
}

func (auth fakeAuth) GetCurrentUser(*http.Request) (models.User, error) {
	if auth.sessionUser == nil {
		return models.User{}, errors.New("no session")
	}
	return *auth.sessionUser, nil
}

func (auth fakeAuth) AuthenticateToken(_ context.Context, raw string, scope models.TokenScope) (models.User, error) {
	tokenScope, ok := auth.tokens[raw]
	if !ok || tokenScope != scope {
		return models.User{}, errors.New("rejected")
	}
	return models.User{ID: "token-owner", Role: models.RoleMember}, nil
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(GetUser(r.Context()).ID))
}

func TestRequireUser(t *testing.T) {
	auth := fakeAuth{tokens: map[string]models.TokenScope{"api-token": models.TokenScopeAPI, "ical-token": models.TokenScopeICal}}
	handler := RequireUser(auth, models.TokenScopeAPI)(http.HandlerFunc(echoUser))

	tests := []struct {
		name     string
		header   string
		expected int
		body     string
	}{
		{name: "no credentials", expected: http.StatusUnauthorized},
		{name: "api token", header: "Bearer api-token", expected: http.StatusOK, body: "token-owner"},
		{name: "ical token on api route", header: "Bearer ical-token", expected: http.StatusUnauthorized},
		{name: "bare token without scheme", header: "api-token", expected: http.StatusUnauthorized},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/calendar", nil)
			if test.header != "" {
				request.Header.Set("Authorization", test.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			if recorder.Code != test.expected {
				t.Errorf("expected %d, got %d", test.expected, recorder.Code)
			}
			if test.body != "" && recorder.Body.String() != test.body {
				t.Errorf("expected body %q, got %q", test.body, recorder.Body.String())
			}
		})
	}
}

func TestRequireUser_SessionWins(t *testing.T) {
	auth := fakeAuth{sessionUser: &models.User{ID: "session-user"}}
	recorder := httptest.NewRecorder()
	RequireUser(auth, models.TokenScopeAPI)(http.HandlerFunc(echoUser)).
		ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Body.String() != "session-user" {
		t.Errorf("expected session user, got %q", recorder.Body.String())
	}
}

func TestRequireQueryToken(t *testing.T) {
	auth := fakeAuth{tokens: map[string]models.TokenScope{"ical-token": models.TokenScopeICal, "api-token": models.TokenScopeAPI}}
	handler := RequireQueryToken(auth, models.TokenScopeICal)(http.HandlerFunc(echoUser))

	for target, expected := range map[string]int{
		"/ical?token=ical-token": http.StatusOK,
		"/ical?token=api-token":  http.StatusUnauthorized,
		"/ical":                  http.StatusUnauthorized,
	} {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
		if recorder.Code != expected {
			t.Errorf("%s: expected %d, got %d", target, expected, recorder.Code)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(echoUser))

	member := context.WithValue(context.Background(), UserContextKey, models.User{ID: "m", Role: models.RoleMember})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(member))
	if recorder.Code != http.StatusForbidden {
		t.Errorf("expected 403 for member, got %d", recorder.Code)
	}

	admin := context.WithValue(context.Background(), UserContextKey, models.User{ID: "a", Role: models.RoleAdmin})
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(admin))
	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", recorder.Code)
	}
}
