package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bdickey/b6/internal/middleware"
	"github.com/bdickey/b6/internal/models"
	"github.com/bdickey/b6/internal/repository"
	"github.com/go-chi/chi/v5"
)

type TokenHandler struct {
	tokenRepo repository.APITokenRepository
	baseURL   string
}

func NewTokenHandler(tokenRepo repository.APITokenRepository, baseURL string) *TokenHandler {
	return &TokenHandler{tokenRepo: tokenRepo, baseURL: strings.TrimSuffix(baseURL, "/")}
}

type tokenRequest struct {
	Name  string            `json:"name"`
	Scope models.TokenScope `json:"scope"`
}

type tokenResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Scope     models.TokenScope `json:"scope"`
	Token     string            `json:"token,omitempty"`
	FeedURL   string            `json:"feed_url,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func newTokenResponse(token models.APIToken) tokenResponse {
	return tokenResponse{ID: token.ID, Name: token.Name, Scope: token.Scope, CreatedAt: token.CreatedAt}
}

// Create issues a token. The raw value is only ever returned here.
func (handler *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request tokenRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	request.Name = strings.TrimSpace(request.Name)
	if request.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	raw, token, err := handler.tokenRepo.Issue(r.Context(), request.Name, request.Scope, user.ID)
	if err != nil {
		writeFailure(w, "creating token", err)
		return
	}

	response := newTokenResponse(token)
	response.Token = raw
	if token.Scope == models.TokenScopeICal {
		response.FeedURL = handler.baseURL + "/ical?token=" + url.QueryEscape(raw)
	}
	writeJSON(w, http.StatusCreated, response)
}

func (handler *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	tokens, err := handler.tokenRepo.FindByUserID(r.Context(), user.ID)
	if err != nil {
		writeFailure(w, "listing tokens", err)
		return
	}

	response := make([]tokenResponse, 0, len(tokens))
	for _, token := range tokens {
		response = append(response, newTokenResponse(token))
	}
	writeJSON(w, http.StatusOK, response)
}

func (handler *TokenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := handler.tokenRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, "deleting token", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
