package models

import (
	"context"
	"time"

	"github.com/alohapoopscoop/scoop-service/booking"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ServicePlan is a durable plan row; frequency is unique per plan.
type ServicePlan struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Frequency   booking.Frequency `json:"frequency"`
	BasePrice   float64           `json:"base_price"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
}

// GetServicePlanByFrequency resolves the plan reference the verifier stores
// on the booking. Returns pgx.ErrNoRows when the frequency has no plan.
func GetServicePlanByFrequency(ctx context.Context, db *pgxpool.Pool, frequency booking.Frequency) (*ServicePlan, error) {
	var p ServicePlan
	query := `
		SELECT id, name, frequency, base_price, description, created_at
		FROM service_plans WHERE frequency = $1`
	err := db.QueryRow(ctx, query, string(frequency)).Scan(
		&p.ID, &p.Name, &p.Frequency, &p.BasePrice, &p.Description, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListServicePlans returns every plan for the pricing page, cheapest first.
func ListServicePlans(ctx context.Context, db *pgxpool.Pool) ([]ServicePlan, error) {
	rows, err := db.Query(ctx, `
		SELECT id, name, frequency, base_price, description, created_at
		FROM service_plans ORDER BY base_price ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []ServicePlan
	for rows.Next() {
		var p ServicePlan
		if err := rows.Scan(&p.ID, &p.Name, &p.Frequency, &p.BasePrice, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
