package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/securecookie"
	"golang.org/x/oauth2"

	"github.com/bdickey/b6/internal/config"
	"github.com/bdickey/b6/internal/models"
	"github.com/bdickey/b6/internal/repository"
)

const (
	sessionCookieName = "household_session"
	devSubject        = "dev-local"
)

var (
	ErrOIDCNotConfigured = errors.New("OIDC not configured")
	ErrInvalidToken      = errors.New("invalid api token")
	ErrTokenScope        = errors.New("api token scope not allowed")
	ErrDevLoginDisabled  = errors.New("dev login disabled")
)

type AuthService struct {
	oauthConfig  *oauth2.Config
	oidcVerifier *oidc.IDTokenVerifier
	secureCookie *securecookie.SecureCookie
	userRepo     repository.UserRepository
	tokenRepo    repository.APITokenRepository
	devLogin     bool
}

type SessionData struct {
	UserID string `json:"user_id"`
}

func NewAuthService(ctx context.Context, cfg config.Config, userRepo repository.UserRepository, tokenRepo repository.APITokenRepository) (*AuthService, error) {
	service := &AuthService{
		secureCookie: securecookie.New([]byte(cfg.SessionSecret), nil),
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
	}

	if cfg.OIDCIssuer == "" {
		if cfg.DevLogin {
			service.devLogin = true
			slog.Warn("OIDC not configured and DEV_LOGIN set, /login signs in a local dev admin")
		} else {
			slog.Warn("OIDC not configured, only API tokens can reach the API")
		}
		return service, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, fmt.Errorf("creating OIDC provider: %w", err)
	}

	service.oauthConfig = &oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	service.oidcVerifier = provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})
	return service, nil
}

func (service *AuthService) OIDCConfigured() bool {
	return service.oauthConfig != nil
}

func (service *AuthService) LoginURL(state string) string {
	if service.oauthConfig == nil {
		return ""
	}
	return service.oauthConfig.AuthCodeURL(state)
}

func (service *AuthService) GenerateState() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func (service *AuthService) HandleCallback(ctx context.Context, code string) (models.User, error) {
	if service.oauthConfig == nil {
		return models.User{}, ErrOIDCNotConfigured
	}

	token, err := service.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return models.User{}, fmt.Errorf("exchanging code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return models.User{}, errors.New("no id_token in response")
	}

	idToken, err := service.oidcVerifier.Verify(ctx, rawIDToken)
	if err != nil {
		return models.User{}, fmt.Errorf("verifying id token: %w", err)
	}

	var claims struct {
		Subject           string `json:"sub"`
		Email             string `json:"email"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Picture           string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return models.User{}, fmt.Errorf("parsing claims: %w", err)
	}

	displayName := claims.Name
	if displayName == "" {
		displayName = claims.PreferredUsername
	}
	if displayName == "" {
		displayName = claims.Email
	}

	return service.provisionUser(ctx, claims.Subject, claims.Email, displayName, claims.Picture)
}

// DevLoginEnabled is true only when DEV_LOGIN is set and no identity provider
// is configured.
func (service *AuthService) DevLoginEnabled() bool {
	return service.devLogin && !service.OIDCConfigured()
}

// DevLogin provisions the local admin used when no identity provider is set.
func (service *AuthService) DevLogin(ctx context.Context) (models.User, error) {
	if !service.DevLoginEnabled() {
		return models.User{}, ErrDevLoginDisabled
	}
	return service.provisionUser(ctx, devSubject, "dev@localhost", "Dev Admin", "")
}

// provisionUser makes the first member of the household an admin.
func (service *AuthService) provisionUser(ctx context.Context, subject, email, name, avatarURL string) (models.User, error) {
	existingUser, err := service.userRepo.FindByOIDCSubject(ctx, subject)
	if err == nil {
		if err := service.userRepo.UpdateProfile(ctx, existingUser.ID, name, email, avatarURL); err != nil {
			slog.Warn("failed to update user profile on login", "error", err)
		}
		existingUser.Name = name
		existingUser.Email = email
		existingUser.AvatarURL = avatarURL
		return existingUser, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.User{}, fmt.Errorf("looking up user: %w", err)
	}

	userCount, err := service.userRepo.Count(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("counting users: %w", err)
	}

	role := models.RoleMember
	if userCount == 0 {
		role = models.RoleAdmin
	}

	created, err := service.userRepo.Create(ctx, models.User{
		OIDCSubject: subject,
		Email:       email,
		Name:        name,
		AvatarURL:   avatarURL,
		Role:        role,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}

	slog.Info("provisioned new user", "id", created.ID, "name", created.Name, "role", created.Role)
	return created, nil
}

// AuthenticateToken resolves a raw API token to its owner, rejecting expired
// tokens and tokens minted for another scope.
func (service *AuthService) AuthenticateToken(ctx context.Context, raw string, scope models.TokenScope) (models.User, error) {
	if raw == "" {
		return models.User{}, ErrInvalidToken
	}

	token, err := service.tokenRepo.FindByTokenHash(ctx, repository.HashToken(raw))
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, ErrInvalidToken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("finding token: %w", err)
	}

	if token.ExpiresAt != nil && token.ExpiresAt.Before(time.Now()) {
		return models.User{}, fmt.Errorf("token expired: %w", ErrInvalidToken)
	}
	if token.Scope != scope {
		return models.User{}, ErrTokenScope
	}

	user, err := service.userRepo.FindByID(ctx, token.CreatedByUserID)
	if err != nil {
		return models.User{}, fmt.Errorf("finding token owner: %w", err)
	}
	return user, nil
}

func (service *AuthService) SetSession(w http.ResponseWriter, userID string) error {
	encoded, err := json.Marshal(SessionData{UserID: userID})
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	value, err := service.secureCookie.Encode(sessionCookieName, string(encoded))
	if err != nil {
		return fmt.Errorf("encoding session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 30,
	})
	return nil
}

func (service *AuthService) GetSession(r *http.Request) (SessionData, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return SessionData{}, fmt.Errorf("no session cookie: %w", err)
	}

	var decoded string
	if err := service.secureCookie.Decode(sessionCookieName, cookie.Value, &decoded); err != nil {
		return SessionData{}, fmt.Errorf("decoding session cookie: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(decoded), &session); err != nil {
		return SessionData{}, fmt.Errorf("unmarshaling session: %w", err)
	}
	return session, nil
}

func (service *AuthService) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (service *AuthService) GetCurrentUser(r *http.Request) (models.User, error) {
	session, err := service.GetSession(r)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.userRepo.FindByID(r.Context(), session.UserID)
	if err != nil {
		return models.User{}, fmt.Errorf("finding user: %w", err)
	}
	return user, nil
}
