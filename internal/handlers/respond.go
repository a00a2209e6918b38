package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bdickey/b6/internal/calendar"
	"github.com/bdickey/b6/internal/repository"
	"github.com/bdickey/b6/internal/services"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeFailure maps domain errors onto status codes. Anything unrecognised is
// logged and reported as a 500 without leaking the cause.
func writeFailure(w http.ResponseWriter, action string, err error) {
	var parseErr *calendar.ParseError
	switch {
	case errors.As(err, &parseErr):
		writeError(w, http.StatusBadRequest, parseErr.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrInvalid), errors.Is(err, repository.ErrInvalidRange), errors.Is(err, services.ErrInvalidMonth), errors.Is(err, services.ErrInvalidYear):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error(action, "error", err)
		writeError(w, http.StatusInternalServerError, "failed "+action)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return false
	}
	return true
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
