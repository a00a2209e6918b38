package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bdickey/b6/internal/models"
	"github.com/bdickey/b6/internal/repository"
	"github.com/bdickey/b6/internal/testutil"
	"github.com/go-chi/chi/v5"
)

func setupHolidayResource(t *testing.T) http.Handler {
	t.Helper()
	database := testutil.NewTestDatabase(t)
	handler := NewResourceHandler[models.Holiday]("holiday", repository.NewHolidayRepository(database),
		func(holiday *models.Holiday, id string) { holiday.ID = id })

	router := chi.NewRouter()
	router.Route("/api/holidays", handler.Routes)
	return router
}

func sendJSON(t *testing.T, router http.Handler, method, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(method, url, bytes.NewBufferString(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestResourceHandler_Lifecycle(t *testing.T) {
	router := setupHolidayResource(t)

	recorder := sendJSON(t, router, http.MethodGet, "/api/holidays", "")
	if recorder.Code != http.StatusOK || bytes.TrimSpace(recorder.Body.Bytes())[0] != '[' {
		t.Fatalf("expected empty list, got %d %s", recorder.Code, recorder.Body.String())
	}

	recorder = sendJSON(t, router, http.MethodPost, "/api/holidays",
		`{"id":"ignored","name":"Winter Break","start_date":"2024-12-23","end_date":"2024-12-31"}`)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var created models.Holiday
	if err := json.NewDecoder(recorder.Body).Decode(&created); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if created.ID == "" || created.ID == "ignored" {
		t.Errorf("expected server-assigned ID, got %q", created.ID)
	}

	recorder = sendJSON(t, router, http.MethodPut, "/api/holidays/"+created.ID,
		`{"name":"Winter Break","start_date":"2024-12-20","end_date":"2025-01-02"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var updated models.Holiday
	json.NewDecoder(recorder.Body).Decode(&updated)
	if updated.StartDate != "2024-12-20" || updated.ID != created.ID {
		t.Errorf("expected updated holiday, got %+v", updated)
	}

	if recorder := sendJSON(t, router, http.MethodDelete, "/api/holidays/"+created.ID, ""); recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", recorder.Code)
	}
	if recorder := sendJSON(t, router, http.MethodGet, "/api/holidays/"+created.ID, ""); recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", recorder.Code)
	}
}

func TestResourceHandler_RejectsInvalidInput(t *testing.T) {
	router := setupHolidayResource(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "reversed range", body: `{"name":"Backwards","start_date":"2025-01-05","end_date":"2025-01-01"}`},
		{name: "bad date", body: `{"name":"Nope","start_date":"2025-02-30","end_date":"2025-03-01"}`},
		{name: "unknown field", body: `{"name":"Extra","start_date":"2025-01-01","end_date":"2025-01-01","colour":"red"}`},
		{name: "malformed json", body: `{"name":`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			recorder := sendJSON(t, router, http.MethodPost, "/api/holidays", test.body)
			if recorder.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestResourceHandler_UpdateMissing(t *testing.T) {
	router := setupHolidayResource(t)

	recorder := sendJSON(t, router, http.MethodPut, "/api/holidays/missing",
		`{"name":"Ghost","start_date":"2025-01-01","end_date":"2025-01-01"}`)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", recorder.Code)
	}
	if recorder := sendJSON(t, router, http.MethodDelete, "/api/holidays/missing", ""); recorder.Code != http.StatusNotFound {
		t.Errorf("expected 404 on delete, got %d", recorder.Code)
	}
}

func TestResourceHandler_BookingForUnknownSitter(t *testing.T) {
	database := testutil.NewTestDatabase(t)
	handler := NewResourceHandler[models.SitterBooking]("booking", repository.NewBookingRepository(database),
		func(booking *models.SitterBooking, id string) { booking.ID = id })

	router := chi.NewRouter()
	router.Route("/api/bookings", handler.Routes)

	recorder := sendJSON(t, router, http.MethodPost, "/api/bookings", `{"sitter_id":"missing","date":"2025-03-14"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", recorder.Code, recorder.Body.String())
	}
}
