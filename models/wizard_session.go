package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alohapoopscoop/scoop-service/booking"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Wizard sessions live in Redis so the four-step flow survives the hard
// suspension of the payment redirect. Abandoned wizards just expire.
const (
	wizardKeyPrefix = "booking_wizard:"
	wizardTTL       = 2 * time.Hour
)

// ErrWizardNotFound is returned for unknown or expired wizard sessions.
var ErrWizardNotFound = errors.New("wizard session not found or expired")

// WizardSession pairs a wizard id with its state machine snapshot.
type WizardSession struct {
	ID    string        `json:"id"`
	State booking.State `json:"state"`
}

// NewWizardSession starts a wizard for one booking attempt.
func NewWizardSession(id booking.Identity, planParam, dogsParam string) *WizardSession {
	return &WizardSession{
		ID:    uuid.New().String(),
		State: booking.NewState(id, planParam, dogsParam),
	}
}

// SaveWizardSession persists the session snapshot, refreshing the TTL. A
// confirmed wizard is kept briefly so a refreshed success page still renders.
func SaveWizardSession(ctx context.Context, rdb *redis.Client, ws *WizardSession) error {
	raw, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("failed to serialize wizard session: %w", err)
	}
	ttl := wizardTTL
	if ws.State.Step.IsTerminal() {
		ttl = 15 * time.Minute
	}
	if err := rdb.Set(ctx, wizardKeyPrefix+ws.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store wizard session: %w", err)
	}
	return nil
}

// GetWizardSession loads a wizard session by id.
func GetWizardSession(ctx context.Context, rdb *redis.Client, id string) (*WizardSession, error) {
	raw, err := rdb.Get(ctx, wizardKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrWizardNotFound
		}
		return nil, fmt.Errorf("failed to load wizard session: %w", err)
	}

	var ws WizardSession
	if err := json.Unmarshal([]byte(raw), &ws); err != nil {
		return nil, fmt.Errorf("failed to decode wizard session: %w", err)
	}
	return &ws, nil
}

