package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bdickey/b6/internal/models"
	"github.com/bdickey/b6/internal/services"
)

type contextKey string

const UserContextKey contextKey = "user"

// Authenticator is the slice of the auth service the middleware needs.
type Authenticator interface {
	GetCurrentUser(r *http.Request) (models.User, error)
	AuthenticateToken(ctx context.Context, raw string, scope models.TokenScope) (models.User, error)
}

var _ Authenticator = (*services.AuthService)(nil)

// RequireUser accepts either a session cookie or a Bearer token of the given
// scope. JSON clients get 401 instead of a login redirect.
func RequireUser(auth Authenticator, scope models.TokenScope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.GetCurrentUser(r)
			if err != nil {
				raw, ok := bearerToken(r)
				if !ok {
					writeUnauthorized(w)
					return
				}
				user, err = auth.AuthenticateToken(r.Context(), raw, scope)
				if err != nil {
					writeUnauthorized(w)
					return
				}
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireQueryToken authenticates with ?token= only, for calendar apps that
// cannot send headers.
func RequireQueryToken(auth Authenticator, scope models.TokenScope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.AuthenticateToken(r.Context(), r.URL.Query().Get("token"), scope)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user.Role != models.RoleAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"forbidden"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUser(ctx context.Context) models.User {
	user, _ := ctx.Value(UserContextKey).(models.User)
	return user
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
