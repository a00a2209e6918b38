package server

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bdickey/b6/internal/config"
	"github.com/bdickey/b6/internal/handlers"
	"github.com/bdickey/b6/internal/metrics"
	"github.com/bdickey/b6/internal/middleware"
	"github.com/bdickey/b6/internal/models"
	"github.com/bdickey/b6/internal/repository"
	"github.com/bdickey/b6/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	router     *chi.Mux
	config     config.Config
	httpServer *http.Server
}

// New wires repositories, services and routes. location decides what "today"
// means for the household.
func New(database *sql.DB, cfg config.Config, authService *services.AuthService, location *time.Location) *Server {
	eventRepo := repository.NewEventRepository(database)
	familyEventRepo := repository.NewFamilyEventRepository(database)
	programRepo := repository.NewProgramRepository(database)
	holidayRepo := repository.NewHolidayRepository(database)
	sitterRepo := repository.NewSitterRepository(database)
	bookingRepo := repository.NewBookingRepository(database)
	transportRepo := repository.NewTransportRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)
	tokenRepo := repository.NewAPITokenRepository(database)

	calendarService := services.NewCalendarService(services.CalendarRepositories{
		Events:       eventRepo,
		FamilyEvents: familyEventRepo,
		Programs:     programRepo,
		Holidays:     holidayRepo,
		Bookings:     bookingRepo,
		Transport:    transportRepo,
		Settings:     settingsRepo,
	}, location)
	feedService := services.NewFeedService(services.FeedRepositories{
		Events:       eventRepo,
		FamilyEvents: familyEventRepo,
		Programs:     programRepo,
		Holidays:     holidayRepo,
		Bookings:     bookingRepo,
		Settings:     settingsRepo,
	})

	authHandler := handlers.NewAuthHandler(authService)
	calendarHandler := handlers.NewCalendarHandler(calendarService, transportRepo, settingsRepo)
	tokenHandler := handlers.NewTokenHandler(tokenRepo, cfg.BaseURL)
	icalHandler := handlers.NewICalHandler(feedService)
	programHandler := handlers.NewResourceHandler[models.Program]("program", programRepo,
		func(program *models.Program, id string) { program.ID = id })

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))
	router.Use(metrics.Middleware())

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.MetricsEnabled {
		router.Handle("/metrics", metrics.Handler())
	}

	router.Get("/login", authHandler.LoginPage)
	router.Get("/auth/callback", authHandler.Callback)
	router.Get("/logout", authHandler.Logout)

	router.With(middleware.RequireQueryToken(authService, models.TokenScopeICal)).Get("/ical", icalHandler.Feed)

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireUser(authService, models.TokenScopeAPI))

		r.Get("/calendar", calendarHandler.CurrentMonth)
		r.Get("/calendar/{year}/{month}", calendarHandler.Month)
		r.Get("/week/{date}", calendarHandler.Week)

		r.Get("/transport/{date}", calendarHandler.GetTransport)
		r.Put("/transport/{date}", calendarHandler.PutTransport)
		r.Get("/carpool", calendarHandler.GetCarpool)
		r.Put("/carpool", calendarHandler.PutCarpool)

		r.Route("/events", handlers.NewResourceHandler[models.CalendarEvent]("event", eventRepo,
			func(event *models.CalendarEvent, id string) { event.ID = id }).Routes)
		r.Route("/family-events", handlers.NewResourceHandler[models.FamilyEvent]("family event", familyEventRepo,
			func(event *models.FamilyEvent, id string) { event.ID = id }).Routes)
		r.Route("/programs", func(r chi.Router) {
			programHandler.Routes(r)
			r.Post("/{id}/cycle", calendarHandler.CycleProgram)
		})
		r.Route("/holidays", handlers.NewResourceHandler[models.Holiday]("holiday", holidayRepo,
			func(holiday *models.Holiday, id string) { holiday.ID = id }).Routes)
		r.Route("/sitters", handlers.NewResourceHandler[models.Sitter]("sitter", sitterRepo,
			func(sitter *models.Sitter, id string) { sitter.ID = id }).Routes)
		r.Route("/bookings", handlers.NewResourceHandler[models.SitterBooking]("booking", bookingRepo,
			func(booking *models.SitterBooking, id string) { booking.ID = id }).Routes)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/tokens", tokenHandler.List)
			r.Post("/tokens", tokenHandler.Create)
			r.Delete("/tokens/{id}", tokenHandler.Delete)
		})
	})

	return &Server{
		router: router,
		config: cfg,
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (server *Server) Handler() http.Handler {
	return server.router
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (server *Server) Start() error {
	slog.Info("starting server", "address", server.httpServer.Addr)
	if err := server.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (server *Server) Shutdown(ctx context.Context) error {
	return server.httpServer.Shutdown(ctx)
}
