package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bdickey/b6/internal/calendar"
	"github.com/bdickey/b6/internal/metrics"
	"github.com/bdickey/b6/internal/repository"
)

// TransportRetentionDays is how long a per-date carpool override is kept.
const TransportRetentionDays = 90

type MaintenanceService struct {
	bookingRepo   repository.BookingRepository
	transportRepo repository.TransportRepository
	location      *time.Location
	now           func() time.Time
}

func NewMaintenanceService(bookingRepo repository.BookingRepository, transportRepo repository.TransportRepository, location *time.Location) *MaintenanceService {
	if location == nil {
		location = time.Local
	}
	return &MaintenanceService{
		bookingRepo:   bookingRepo,
		transportRepo: transportRepo,
		location:      location,
		now:           time.Now,
	}
}

// Run marks bookings before today as past and drops overrides older than the
// retention window. Both tasks run even if the first one fails.
func (service *MaintenanceService) Run(ctx context.Context) error {
	today := calendar.DateKeyFromTime(service.now().In(service.location))

	var firstErr error
	marked, err := service.bookingRepo.MarkPast(ctx, today)
	if err != nil {
		firstErr = err
	} else {
		metrics.MaintenanceRows("bookings_past", marked)
	}

	pruned, err := service.transportRepo.DeleteBefore(ctx, today.AddDays(-TransportRetentionDays))
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		metrics.MaintenanceRows("transport_pruned", pruned)
	}

	if firstErr != nil {
		return fmt.Errorf("running maintenance: %w", firstErr)
	}
	slog.Info("maintenance complete", "bookings_marked_past", marked, "transport_pruned", pruned)
	return nil
}

// Schedule registers Run on a cron spec in the household timezone. The caller
// starts and stops the returned scheduler.
func (service *MaintenanceService) Schedule(spec string) (*cron.Cron, error) {
	scheduler := cron.New(cron.WithLocation(service.location))
	_, err := scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := service.Run(ctx); err != nil {
			slog.Error("scheduled maintenance", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling maintenance %q: %w", spec, err)
	}
	return scheduler, nil
}
