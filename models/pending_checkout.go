package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alohapoopscoop/scoop-service/booking"
	"github.com/redis/go-redis/v9"
)

// Pending checkouts are the correlation records written immediately before
// the browser is handed to the payment processor. The TTL outlives any
// realistic checkout session so a slow return can still resume.
const (
	pendingCheckoutKeyPrefix = "pending_checkout:"
	pendingByWizardKeyPrefix = "pending_checkout_wizard:"
	pendingCheckoutTTL       = 24 * time.Hour
)

// ErrPendingCheckoutNotFound is returned when no pending checkout exists
// for the token.
var ErrPendingCheckoutNotFound = errors.New("pending checkout not found")

// PendingCheckout correlates a processor session with the draft snapshot and
// wizard that produced it. The processor's stored metadata stays the source
// of truth on resume; the draft echo here is for support and logging.
type PendingCheckout struct {
	SessionID  string        `json:"session_id"`
	WizardID   string        `json:"wizard_id"`
	CustomerID string        `json:"customer_id,omitempty"`
	Draft      booking.Draft `json:"draft"`
	CreatedAt  time.Time     `json:"created_at"`
}

// SavePendingCheckout stores the record under the session token and indexes
// it by wizard, keeping at most one pending checkout per wizard session.
func SavePendingCheckout(ctx context.Context, rdb *redis.Client, pc *PendingCheckout) error {
	pc.CreatedAt = time.Now()
	raw, err := json.Marshal(pc)
	if err != nil {
		return fmt.Errorf("failed to serialize pending checkout: %w", err)
	}

	if pc.WizardID != "" {
		// Replace any previous pending checkout for this wizard.
		if prev, err := rdb.Get(ctx, pendingByWizardKeyPrefix+pc.WizardID).Result(); err == nil && prev != pc.SessionID {
			_ = rdb.Del(ctx, pendingCheckoutKeyPrefix+prev).Err()
		}
		if err := rdb.Set(ctx, pendingByWizardKeyPrefix+pc.WizardID, pc.SessionID, pendingCheckoutTTL).Err(); err != nil {
			return fmt.Errorf("failed to index pending checkout: %w", err)
		}
	}

	if err := rdb.Set(ctx, pendingCheckoutKeyPrefix+pc.SessionID, raw, pendingCheckoutTTL).Err(); err != nil {
		return fmt.Errorf("failed to store pending checkout: %w", err)
	}
	return nil
}

// GetPendingCheckout loads the record for a session token.
func GetPendingCheckout(ctx context.Context, rdb *redis.Client, sessionID string) (*PendingCheckout, error) {
	raw, err := rdb.Get(ctx, pendingCheckoutKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPendingCheckoutNotFound
		}
		return nil, fmt.Errorf("failed to load pending checkout: %w", err)
	}

	var pc PendingCheckout
	if err := json.Unmarshal([]byte(raw), &pc); err != nil {
		return nil, fmt.Errorf("failed to decode pending checkout: %w", err)
	}
	return &pc, nil
}

// GetPendingCheckoutByWizard recovers the session token for a wizard, which
// makes resumption work even when the return URL lost its session_id param.
func GetPendingCheckoutByWizard(ctx context.Context, rdb *redis.Client, wizardID string) (*PendingCheckout, error) {
	sessionID, err := rdb.Get(ctx, pendingByWizardKeyPrefix+wizardID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPendingCheckoutNotFound
		}
		return nil, fmt.Errorf("failed to resolve pending checkout for wizard: %w", err)
	}
	return GetPendingCheckout(ctx, rdb, sessionID)
}

// DeletePendingCheckout clears the record after a terminal verification
// outcome so resumption cannot loop on a dead session.
func DeletePendingCheckout(ctx context.Context, rdb *redis.Client, pc *PendingCheckout) error {
	keys := []string{pendingCheckoutKeyPrefix + pc.SessionID}
	if pc.WizardID != "" {
		keys = append(keys, pendingByWizardKeyPrefix+pc.WizardID)
	}
	return rdb.Del(ctx, keys...).Err()
}
