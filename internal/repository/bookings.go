package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bdickey/b6/internal/calendar"
	"github.com/bdickey/b6/internal/models"
	"github.com/google/uuid"
)

type BookingRepository interface {
	FindByID(ctx context.Context, id string) (models.SitterBooking, error)
	FindInRange(ctx context.Context, start, end calendar.DateKey) ([]models.SitterBooking, error)
	FindAll(ctx context.Context) ([]models.SitterBooking, error)
	Create(ctx context.Context, booking models.SitterBooking) (models.SitterBooking, error)
	Update(ctx context.Context, booking models.SitterBooking) error
	Delete(ctx context.Context, id string) error
	MarkPast(ctx context.Context, before calendar.DateKey) (int64, error)
}

type SQLiteBookingRepository struct {
	database *sql.DB
}

func NewBookingRepository(database *sql.DB) *SQLiteBookingRepository {
	return &SQLiteBookingRepository{database: database}
}

const bookingSelect = `SELECT b.id, b.sitter_id, s.name, s.color, b.date, b.start_time, b.end_time,
	b.hours, b.total, b.status, b.payment_method, b.created_at
FROM sitter_bookings b JOIN sitters s ON s.id = b.sitter_id`

func scanBooking(row rowScanner) (models.SitterBooking, error) {
	var booking models.SitterBooking
	err := row.Scan(
		&booking.ID, &booking.SitterID, &booking.SitterName, &booking.SitterColor,
		&booking.Date, &booking.StartTime, &booking.EndTime,
		&booking.Hours, &booking.Total, &booking.Status, &booking.PaymentMethod, &booking.CreatedAt,
	)
	return booking, err
}

func (repository *SQLiteBookingRepository) FindByID(ctx context.Context, id string) (models.SitterBooking, error) {
	booking, err := scanBooking(repository.database.QueryRowContext(ctx, bookingSelect+" WHERE b.id = ?", id))
	if err != nil {
		return models.SitterBooking{}, wrap("finding booking by id", err)
	}
	return booking, nil
}

func (repository *SQLiteBookingRepository) FindInRange(ctx context.Context, start, end calendar.DateKey) ([]models.SitterBooking, error) {
	return repository.query(ctx,
		bookingSelect+" WHERE b.date >= ? AND b.date <= ? ORDER BY b.date, b.start_time, b.created_at",
		start, end,
	)
}

func (repository *SQLiteBookingRepository) FindAll(ctx context.Context) ([]models.SitterBooking, error) {
	return repository.query(ctx, bookingSelect+" ORDER BY b.date DESC, b.start_time")
}

func (repository *SQLiteBookingRepository) query(ctx context.Context, query string, args ...any) ([]models.SitterBooking, error) {
	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.SitterBooking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func validBookingStatus(status models.BookingStatus) bool {
	switch status {
	case models.BookingConfirmed, models.BookingTentative, models.BookingPast:
		return true
	}
	return false
}

// requireSitter reports a missing sitter as ErrInvalid instead of a foreign
// key failure.
func (repository *SQLiteBookingRepository) requireSitter(ctx context.Context, sitterID string) error {
	var exists bool
	err := repository.database.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM sitters WHERE id = ?)", sitterID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking sitter: %w", err)
	}
	if !exists {
		return fmt.Errorf("sitter %q: %w", sitterID, ErrInvalid)
	}
	return nil
}

func (repository *SQLiteBookingRepository) Create(ctx context.Context, booking models.SitterBooking) (models.SitterBooking, error) {
	date, err := calendar.ParseDateKey(string(booking.Date))
	if err != nil {
		return models.SitterBooking{}, fmt.Errorf("creating booking: %w", err)
	}
	booking.Date = date
	if booking.Status == "" {
		booking.Status = models.BookingTentative
	}
	if !validBookingStatus(booking.Status) {
		return models.SitterBooking{}, fmt.Errorf("creating booking: status %q: %w", booking.Status, ErrInvalid)
	}
	if err := repository.requireSitter(ctx, booking.SitterID); err != nil {
		return models.SitterBooking{}, fmt.Errorf("creating booking: %w", err)
	}
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	booking.CreatedAt = time.Now()

	_, err = repository.database.ExecContext(ctx,
		`INSERT INTO sitter_bookings (id, sitter_id, date, start_time, end_time, hours, total,
			status, payment_method, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID, booking.SitterID, booking.Date, booking.StartTime, booking.EndTime,
		booking.Hours, booking.Total, booking.Status, booking.PaymentMethod, booking.CreatedAt,
	)
	if err != nil {
		return models.SitterBooking{}, fmt.Errorf("creating booking: %w", err)
	}
	return repository.FindByID(ctx, booking.ID)
}

func (repository *SQLiteBookingRepository) Update(ctx context.Context, booking models.SitterBooking) error {
	date, err := calendar.ParseDateKey(string(booking.Date))
	if err != nil {
		return fmt.Errorf("updating booking: %w", err)
	}
	if !validBookingStatus(booking.Status) {
		return fmt.Errorf("updating booking: status %q: %w", booking.Status, ErrInvalid)
	}
	if err := repository.requireSitter(ctx, booking.SitterID); err != nil {
		return fmt.Errorf("updating booking: %w", err)
	}
	result, err := repository.database.ExecContext(ctx,
		`UPDATE sitter_bookings SET sitter_id = ?, date = ?, start_time = ?, end_time = ?,
			hours = ?, total = ?, status = ?, payment_method = ?
		WHERE id = ?`,
		booking.SitterID, date, booking.StartTime, booking.EndTime,
		booking.Hours, booking.Total, booking.Status, booking.PaymentMethod, booking.ID,
	)
	if err != nil {
		return fmt.Errorf("updating booking: %w", err)
	}
	return requireAffected(result, "updating booking")
}

func (repository *SQLiteBookingRepository) Delete(ctx context.Context, id string) error {
	result, err := repository.database.ExecContext(ctx, "DELETE FROM sitter_bookings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting booking: %w", err)
	}
	return requireAffected(result, "deleting booking")
}

// MarkPast moves confirmed and tentative bookings dated before the given day to past.
func (repository *SQLiteBookingRepository) MarkPast(ctx context.Context, before calendar.DateKey) (int64, error) {
	result, err := repository.database.ExecContext(ctx,
		"UPDATE sitter_bookings SET status = ? WHERE date < ? AND status IN (?, ?)",
		models.BookingPast, before, models.BookingConfirmed, models.BookingTentative,
	)
	if err != nil {
		return 0, fmt.Errorf("marking past bookings: %w", err)
	}
	return result.RowsAffected()
}
