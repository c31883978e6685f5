package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alohapoopscoop/scoop-service/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Booking status values. The booking flow only ever writes "scheduled";
// the rest are fulfillment transitions plus customer-initiated cancellation.
const (
	BookingStatusScheduled = "scheduled"
	BookingStatusUpcoming  = "upcoming"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// ErrDuplicateBooking is returned when a booking already exists for the
// checkout session; the unique constraint on checkout_session_id is the
// idempotency key for payment verification.
var ErrDuplicateBooking = errors.New("booking already exists for this checkout session")

// Booking is a durable booking, created only after the processor confirmed
// payment. TotalPrice is the processor-confirmed charged amount.
type Booking struct {
	ID                  uuid.UUID `json:"id"`
	CustomerID          uuid.UUID `json:"customer_id"`
	ServicePlanID       uuid.UUID `json:"service_plan_id"`
	NumDogs             int       `json:"num_dogs"`
	ServiceDate         string    `json:"service_date"`
	ServiceTime         string    `json:"service_time"`
	SpecialInstructions string    `json:"special_instructions"`
	TotalPrice          float64   `json:"total_price"`
	Address             string    `json:"address"`
	Status              string    `json:"status"`
	ConfirmationNumber  string    `json:"confirmation_number"`
	CheckoutSessionID   string    `json:"checkout_session_id"`
	CreatedAt           time.Time `json:"created_at"`
}

// CreateBooking inserts the booking row. A unique violation on
// checkout_session_id maps to ErrDuplicateBooking so a concurrent verifier
// can fetch the winning row instead of double-booking.
func CreateBooking(ctx context.Context, db *pgxpool.Pool, b *Booking) (*Booking, error) {
	logger.InfoLogger.Infof("Creating booking for checkout session %s", b.CheckoutSessionID)

	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
		}
		b.ID = id
	}
	b.CreatedAt = time.Now()

	query := `
		INSERT INTO bookings (
			id, customer_id, service_plan_id, num_dogs, service_date, service_time,
			special_instructions, total_price, address, status,
			confirmation_number, checkout_session_id, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		) RETURNING id`

	var insertedID uuid.UUID
	err := db.QueryRow(ctx, query,
		b.ID, b.CustomerID, b.ServicePlanID, b.NumDogs, b.ServiceDate, b.ServiceTime,
		b.SpecialInstructions, b.TotalPrice, b.Address, b.Status,
		b.ConfirmationNumber, b.CheckoutSessionID, b.CreatedAt,
	).Scan(&insertedID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateBooking
		}
		logger.ErrorLogger.Errorf("Failed to insert booking for session %s: %v", b.CheckoutSessionID, err)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	b.ID = insertedID
	logger.InfoLogger.Infof("Booking %s created for checkout session %s", b.ID, b.CheckoutSessionID)
	return b, nil
}

// GetBookingByCheckoutSession returns the booking created for a checkout
// session, or pgx.ErrNoRows when verification has not written one yet.
func GetBookingByCheckoutSession(ctx context.Context, db *pgxpool.Pool, sessionID string) (*Booking, error) {
	var b Booking
	query := `
		SELECT id, customer_id, service_plan_id, num_dogs, service_date, service_time,
		       special_instructions, total_price, address, status,
		       confirmation_number, checkout_session_id, created_at
		FROM bookings WHERE checkout_session_id = $1`
	err := db.QueryRow(ctx, query, sessionID).Scan(
		&b.ID, &b.CustomerID, &b.ServicePlanID, &b.NumDogs, &b.ServiceDate, &b.ServiceTime,
		&b.SpecialInstructions, &b.TotalPrice, &b.Address, &b.Status,
		&b.ConfirmationNumber, &b.CheckoutSessionID, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBookingsByCustomer returns a customer's bookings, newest first.
func ListBookingsByCustomer(ctx context.Context, db *pgxpool.Pool, customerID uuid.UUID) ([]Booking, error) {
	rows, err := db.Query(ctx, `
		SELECT id, customer_id, service_plan_id, num_dogs, service_date, service_time,
		       special_instructions, total_price, address, status,
		       confirmation_number, checkout_session_id, created_at
		FROM bookings WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.CustomerID, &b.ServicePlanID, &b.NumDogs, &b.ServiceDate, &b.ServiceTime,
			&b.SpecialInstructions, &b.TotalPrice, &b.Address, &b.Status,
			&b.ConfirmationNumber, &b.CheckoutSessionID, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CancelBooking marks an active booking cancelled, owner-scoped. Returns
// pgx.ErrNoRows when the booking is missing, not the caller's, or already
// terminal.
func CancelBooking(ctx context.Context, db *pgxpool.Pool, bookingID, customerID uuid.UUID) error {
	cmdTag, err := db.Exec(ctx, `
		UPDATE bookings SET status = $3
		WHERE id = $1 AND customer_id = $2 AND status IN ($4, $5)`,
		bookingID, customerID, BookingStatusCancelled, BookingStatusScheduled, BookingStatusUpcoming)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to cancel booking %s: %v", bookingID, err)
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	logger.InfoLogger.Infof("Booking %s cancelled by customer %s", bookingID, customerID)
	return nil
}
