package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

func advanceToPayment(t *testing.T) State {
	t.Helper()
	s := NewState(Identity{}, "weekly", "2")

	s = Reduce(s, Next{Fields: validDraft(), Now: testNow})
	require.Equal(t, StepSchedule, s.Step, "field errors: %v", s.FieldErrors)

	s = Reduce(s, Next{Fields: validDraft(), Now: testNow})
	require.Equal(t, StepReview, s.Step, "field errors: %v", s.FieldErrors)

	s = Reduce(s, Next{Now: testNow})
	require.Equal(t, StepPayment, s.Step)
	return s
}

func TestNextBlockedByInvalidEmail(t *testing.T) {
	s := NewState(Identity{}, "weekly", "1")
	fields := validDraft()
	fields.Email = "not-an-email"

	s = Reduce(s, Next{Fields: fields, Now: testNow})

	assert.Equal(t, StepCustomerInfo, s.Step)
	assert.Contains(t, s.FieldErrors, "email")
}

func TestNextNormalizesEmail(t *testing.T) {
	s := NewState(Identity{}, "weekly", "1")
	fields := validDraft()
	fields.Email = "  Jane@Example.COM "

	s = Reduce(s, Next{Fields: fields, Now: testNow})

	assert.Equal(t, StepSchedule, s.Step, "field errors: %v", s.FieldErrors)
	assert.Equal(t, "jane@example.com", s.Draft.Email)
}

func TestNextBlockedByPastDate(t *testing.T) {
	s := NewState(Identity{}, "weekly", "1")
	s = Reduce(s, Next{Fields: validDraft(), Now: testNow})
	require.Equal(t, StepSchedule, s.Step)

	fields := validDraft()
	fields.ServiceDate = "2026-08-28"
	s = Reduce(s, Next{Fields: fields, Now: testNow})

	assert.Equal(t, StepSchedule, s.Step)
	assert.Contains(t, s.FieldErrors, "service_date")
}

func TestBackPreservesDraft(t *testing.T) {
	s := advanceToPayment(t)
	before := s.Draft

	// Advance, back, advance again: round-trip identity on the draft.
	s = Reduce(s, Back{})
	assert.Equal(t, StepReview, s.Step)
	assert.Equal(t, before, s.Draft)

	s = Reduce(s, Back{})
	assert.Equal(t, StepSchedule, s.Step)
	assert.Equal(t, before, s.Draft)

	s = Reduce(s, Back{})
	assert.Equal(t, StepCustomerInfo, s.Step)
	assert.Equal(t, before, s.Draft)

	// Back from step 1 is a no-op.
	s = Reduce(s, Back{})
	assert.Equal(t, StepCustomerInfo, s.Step)

	s = Reduce(s, Next{Fields: before, Now: testNow})
	s = Reduce(s, Next{Fields: before, Now: testNow})
	s = Reduce(s, Next{Now: testNow})
	assert.Equal(t, StepPayment, s.Step)
	assert.Equal(t, before, s.Draft)
}

func TestCheckoutHandoffAndConfirm(t *testing.T) {
	s := advanceToPayment(t)

	s = Reduce(s, CheckoutStarted{SessionID: "cs_test_123"})
	assert.Equal(t, StepSubmitted, s.Step)
	assert.Equal(t, "cs_test_123", s.CheckoutSessionID)

	s = Reduce(s, PaymentConfirmed{ConfirmationNumber: "APS-12345"})
	assert.Equal(t, StepConfirmed, s.Step)
	assert.Equal(t, "APS-12345", s.ConfirmationNumber)
	assert.True(t, s.Step.IsTerminal())
}

func TestCheckoutOnlyFromPaymentStep(t *testing.T) {
	s := NewState(Identity{}, "weekly", "1")
	out := Reduce(s, CheckoutStarted{SessionID: "cs_test_123"})
	assert.Equal(t, StepCustomerInfo, out.Step)
	assert.NotEmpty(t, out.LastError)
	assert.Empty(t, out.CheckoutSessionID)
}

func TestTerminalPaymentFailureClearsSession(t *testing.T) {
	s := advanceToPayment(t)
	s = Reduce(s, CheckoutStarted{SessionID: "cs_test_dead"})

	s = Reduce(s, PaymentFailed{Reason: "session expired", Terminal: true})
	assert.Equal(t, StepPayment, s.Step)
	assert.Empty(t, s.CheckoutSessionID)
	assert.Equal(t, "session expired", s.LastError)
}

func TestRetryablePaymentFailureKeepsSession(t *testing.T) {
	s := advanceToPayment(t)
	s = Reduce(s, CheckoutStarted{SessionID: "cs_test_retry"})

	s = Reduce(s, PaymentFailed{Reason: "gateway unreachable", Terminal: false})
	assert.Equal(t, StepPayment, s.Step)
	assert.Equal(t, "cs_test_retry", s.CheckoutSessionID)
}

func TestPlanEditableBeforeReviewOnly(t *testing.T) {
	s := NewState(Identity{}, "weekly", "1")

	fields := validDraft()
	fields.Frequency = FrequencyMonthly
	fields.NumDogs = "3"
	s = Reduce(s, Next{Fields: fields, Now: testNow})

	require.Equal(t, StepSchedule, s.Step)
	assert.Equal(t, FrequencyMonthly, s.Draft.Frequency)
	assert.Equal(t, "3", s.Draft.NumDogs)
	assert.Equal(t, 39.99, s.Draft.Total())

	s = Reduce(s, Next{Fields: fields, Now: testNow})
	require.Equal(t, StepReview, s.Step)

	// Review's Next merges nothing; the plan is frozen.
	frozen := validDraft()
	frozen.Frequency = FrequencyOnetime
	s = Reduce(s, Next{Fields: frozen, Now: testNow})
	assert.Equal(t, StepPayment, s.Step)
	assert.Equal(t, FrequencyMonthly, s.Draft.Frequency)
}

func TestStepTransitionTable(t *testing.T) {
	assert.True(t, StepCustomerInfo.CanTransitionTo(StepSchedule))
	assert.False(t, StepCustomerInfo.CanTransitionTo(StepReview))
	assert.True(t, StepSubmitted.CanTransitionTo(StepConfirmed))
	assert.True(t, StepSubmitted.CanTransitionTo(StepPayment))
	assert.False(t, StepConfirmed.CanTransitionTo(StepPayment))
	assert.True(t, StepConfirmed.IsTerminal())
	assert.False(t, StepPayment.IsTerminal())
}
