package models

import (
	"context"
	"fmt"
	"time"

	"github.com/alohapoopscoop/scoop-service/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Customer is a durable customer record. Guests created during payment
// verification have no password hash and cannot log in until they register.
type Customer struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	PasswordHash *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewCustomer builds a customer struct with a fresh UUIDv7.
func NewCustomer(name, email, phone, address string) (*Customer, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for customer: %w", err)
	}
	return &Customer{
		ID:        id,
		Name:      name,
		Email:     email,
		Phone:     phone,
		Address:   address,
		CreatedAt: time.Now(),
	}, nil
}

// CreateCustomer inserts the customer row.
func CreateCustomer(ctx context.Context, db *pgxpool.Pool, customer *Customer) (*Customer, error) {
	logger.InfoLogger.Infof("Creating customer record for email: %s", customer.Email)

	query := `
		INSERT INTO customers (id, name, email, phone, address, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var insertedID uuid.UUID
	err := db.QueryRow(ctx, query,
		customer.ID, customer.Name, customer.Email, customer.Phone,
		customer.Address, customer.PasswordHash, customer.CreatedAt,
	).Scan(&insertedID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert customer %s: %v", customer.Email, err)
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	customer.ID = insertedID
	return customer, nil
}

// GetCustomerByEmail returns the customer with this email, or pgx.ErrNoRows.
func GetCustomerByEmail(ctx context.Context, db *pgxpool.Pool, email string) (*Customer, error) {
	var c Customer
	query := `
		SELECT id, name, email, phone, address, password_hash, created_at
		FROM customers WHERE email = $1`
	err := db.QueryRow(ctx, query, email).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.PasswordHash, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCustomerByID returns the customer with this id, or pgx.ErrNoRows.
func GetCustomerByID(ctx context.Context, db *pgxpool.Pool, id uuid.UUID) (*Customer, error) {
	var c Customer
	query := `
		SELECT id, name, email, phone, address, password_hash, created_at
		FROM customers WHERE id = $1`
	err := db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.PasswordHash, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCustomerProfile updates the editable profile fields.
func UpdateCustomerProfile(ctx context.Context, db *pgxpool.Pool, id uuid.UUID, name, phone, address string) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE customers SET name = $2, phone = $3, address = $4 WHERE id = $1`,
		id, name, phone, address)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update profile for customer %s: %v", id, err)
		return fmt.Errorf("failed to update customer profile: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("customer %s not found for update", id)
	}
	return nil
}

// UpdateCustomerAddressIfEmpty opportunistically backfills a missing profile
// address from the booking flow. A customer-entered address always wins.
func UpdateCustomerAddressIfEmpty(ctx context.Context, db *pgxpool.Pool, id uuid.UUID, address string) error {
	_, err := db.Exec(ctx,
		`UPDATE customers SET address = $2 WHERE id = $1 AND (address IS NULL OR address = '')`,
		id, address)
	if err != nil {
		return fmt.Errorf("failed to backfill customer address: %w", err)
	}
	return nil
}

// SetCustomerPassword stores a new password hash.
func SetCustomerPassword(ctx context.Context, db *pgxpool.Pool, id uuid.UUID, passwordHash string) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE customers SET password_hash = $2 WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to set customer password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("customer %s not found for password update", id)
	}
	return nil
}
