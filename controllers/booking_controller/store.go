package booking_controller

import (
	"context"

	"github.com/alohapoopscoop/scoop-service/booking"
	"github.com/alohapoopscoop/scoop-service/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Store is the durable-store boundary the booking flow needs: lookups by
// unique field return zero-or-one row, inserts return the created row or an
// error. Tests substitute an in-memory implementation.
type Store interface {
	GetBookingByCheckoutSession(ctx context.Context, sessionID string) (*models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error)
	ListBookingsByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, customerID uuid.UUID) error

	GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error)
	GetCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	CreateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error)
	UpdateCustomerAddressIfEmpty(ctx context.Context, id uuid.UUID, address string) error

	GetServicePlanByFrequency(ctx context.Context, f booking.Frequency) (*models.ServicePlan, error)
}

// SessionStore is the client-local persistence boundary: wizard sessions
// and pending checkouts that must survive the payment redirect.
type SessionStore interface {
	SaveWizard(ctx context.Context, ws *models.WizardSession) error
	GetWizard(ctx context.Context, id string) (*models.WizardSession, error)

	SavePending(ctx context.Context, pc *models.PendingCheckout) error
	GetPending(ctx context.Context, sessionID string) (*models.PendingCheckout, error)
	GetPendingByWizard(ctx context.Context, wizardID string) (*models.PendingCheckout, error)
	DeletePending(ctx context.Context, pc *models.PendingCheckout) error
}

// pgStore adapts the models layer onto the Store boundary.
type pgStore struct {
	db *pgxpool.Pool
}

func (s *pgStore) GetBookingByCheckoutSession(ctx context.Context, sessionID string) (*models.Booking, error) {
	return models.GetBookingByCheckoutSession(ctx, s.db, sessionID)
}

func (s *pgStore) CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	return models.CreateBooking(ctx, s.db, b)
}

func (s *pgStore) ListBookingsByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Booking, error) {
	return models.ListBookingsByCustomer(ctx, s.db, customerID)
}

func (s *pgStore) CancelBooking(ctx context.Context, bookingID, customerID uuid.UUID) error {
	return models.CancelBooking(ctx, s.db, bookingID, customerID)
}

func (s *pgStore) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return models.GetCustomerByEmail(ctx, s.db, email)
}

func (s *pgStore) GetCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return models.GetCustomerByID(ctx, s.db, id)
}

func (s *pgStore) CreateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	return models.CreateCustomer(ctx, s.db, c)
}

func (s *pgStore) UpdateCustomerAddressIfEmpty(ctx context.Context, id uuid.UUID, address string) error {
	return models.UpdateCustomerAddressIfEmpty(ctx, s.db, id, address)
}

func (s *pgStore) GetServicePlanByFrequency(ctx context.Context, f booking.Frequency) (*models.ServicePlan, error) {
	return models.GetServicePlanByFrequency(ctx, s.db, f)
}

// redisSessionStore adapts the models Redis helpers onto SessionStore.
type redisSessionStore struct {
	rdb *redis.Client
}

func (s *redisSessionStore) SaveWizard(ctx context.Context, ws *models.WizardSession) error {
	return models.SaveWizardSession(ctx, s.rdb, ws)
}

func (s *redisSessionStore) GetWizard(ctx context.Context, id string) (*models.WizardSession, error) {
	return models.GetWizardSession(ctx, s.rdb, id)
}

func (s *redisSessionStore) SavePending(ctx context.Context, pc *models.PendingCheckout) error {
	return models.SavePendingCheckout(ctx, s.rdb, pc)
}

func (s *redisSessionStore) GetPending(ctx context.Context, sessionID string) (*models.PendingCheckout, error) {
	return models.GetPendingCheckout(ctx, s.rdb, sessionID)
}

func (s *redisSessionStore) GetPendingByWizard(ctx context.Context, wizardID string) (*models.PendingCheckout, error) {
	return models.GetPendingCheckoutByWizard(ctx, s.rdb, wizardID)
}

func (s *redisSessionStore) DeletePending(ctx context.Context, pc *models.PendingCheckout) error {
	return models.DeletePendingCheckout(ctx, s.rdb, pc)
}
