package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Middleware())
	router.Get("/api/transport/{date}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/transport/{date}"))
	beforeErrors := testutil.ToFloat64(httpErrorsTotal.WithLabelValues(http.MethodGet, "/boom", "500"))

	for _, path := range []string{"/api/transport/2025-03-03", "/api/transport/2025-03-04", "/boom"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/transport/{date}")) - before; got != 2 {
		t.Errorf("expected 2 requests on the pattern label, got %v", got)
	}
	if got := testutil.ToFloat64(httpErrorsTotal.WithLabelValues(http.MethodGet, "/boom", "500")) - beforeErrors; got != 1 {
		t.Errorf("expected 1 server error, got %v", got)
	}
}

func TestObserveSource_CountsFailures(t *testing.T) {
	before := testutil.ToFloat64(sourceErrorsTotal.WithLabelValues("holidays"))

	ObserveSource(context.Background(), "holidays", time.Now(), nil)
	ObserveSource(context.Background(), "holidays", time.Now(), errors.New("disk on fire"))

	if got := testutil.ToFloat64(sourceErrorsTotal.WithLabelValues("holidays")) - before; got != 1 {
		t.Errorf("expected 1 failure recorded, got %v", got)
	}
}

func TestHandler_ExposesCounters(t *testing.T) {
	ViewBuilt("month")
	MaintenanceRows("bookings_past", 3)

	recorder := httptest.NewRecorder()
	Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := recorder.Body.String()
	for _, name := range []string{"household_calendar_views_total", "household_maintenance_rows_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in metrics output", name)
		}
	}
}
