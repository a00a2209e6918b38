package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "household_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route"})

	httpErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "household_http_errors_total",
		Help: "Total number of HTTP requests resulting in server errors.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "household_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	sourceLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "household_source_fetch_seconds",
		Help:    "Histogram of calendar source fetch latencies.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	sourceErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "household_source_fetch_errors_total",
		Help: "Calendar source fetches that failed and were rendered empty.",
	}, []string{"source"})

	viewsBuiltTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "household_calendar_views_total",
		Help: "Calendar views assembled, by kind.",
	}, []string{"view"})

	maintenanceRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "household_maintenance_rows_total",
		Help: "Rows changed by the nightly maintenance job.",
	}, []string{"task"})
)

// Middleware records request count, latency and server errors per chi route pattern.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := routePattern(r)
			status := ww.Status()
			statusCode := strconv.Itoa(status)

			httpRequestsTotal.WithLabelValues(r.Method, route).Inc()
			httpRequestDuration.WithLabelValues(r.Method, route, statusCode).Observe(time.Since(start).Seconds())
			if status >= http.StatusInternalServerError {
				httpErrorsTotal.WithLabelValues(r.Method, route, statusCode).Inc()
			}
		})
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSource records one source fetch. A non-nil err also bumps the failure counter.
func ObserveSource(_ context.Context, source string, start time.Time, err error) {
	sourceLatency.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		sourceErrorsTotal.WithLabelValues(source).Inc()
	}
}

func ViewBuilt(view string) {
	viewsBuiltTotal.WithLabelValues(view).Inc()
}

func MaintenanceRows(task string, rows int64) {
	maintenanceRowsTotal.WithLabelValues(task).Add(float64(rows))
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
