package booking

import (
	"strings"
	"time"
)

// Step is the wizard's explicit current-state value.
type Step int

const (
	StepCustomerInfo Step = 1
	StepSchedule     Step = 2
	StepReview       Step = 3
	StepPayment      Step = 4
	// StepSubmitted is the suspend point: the browser has been handed to the
	// payment processor and the wizard waits for verification.
	StepSubmitted Step = 5
	// StepConfirmed is terminal; the booking row exists.
	StepConfirmed Step = 6
)

// validTransitions defines the forward edges of the wizard. Back edges are
// handled separately: any step in 2..4 may step back without validation.
var validTransitions = map[Step][]Step{
	StepCustomerInfo: {StepSchedule},
	StepSchedule:     {StepReview},
	StepReview:       {StepPayment},
	StepPayment:      {StepSubmitted},
	StepSubmitted:    {StepConfirmed, StepPayment},
	StepConfirmed:    {},
}

// CanTransitionTo reports whether a forward edge from s to target exists.
func (s Step) CanTransitionTo(target Step) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the wizard can move no further.
func (s Step) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

func (s Step) String() string {
	switch s {
	case StepCustomerInfo:
		return "customer_info"
	case StepSchedule:
		return "schedule"
	case StepReview:
		return "review"
	case StepPayment:
		return "payment"
	case StepSubmitted:
		return "submitted"
	case StepConfirmed:
		return "confirmed"
	}
	return "unknown"
}

// State is the whole wizard: current step, accumulated draft, the injected
// identity snapshot, and the outcome of the last transition attempt.
type State struct {
	Step               Step              `json:"step"`
	Draft              Draft             `json:"draft"`
	Identity           Identity          `json:"identity"`
	FieldErrors        map[string]string `json:"field_errors,omitempty"`
	CheckoutSessionID  string            `json:"checkout_session_id,omitempty"`
	ConfirmationNumber string            `json:"confirmation_number,omitempty"`
	LastError          string            `json:"last_error,omitempty"`
}

// NewState starts a wizard at step 1 with a pre-filled draft.
func NewState(id Identity, planParam, dogsParam string) State {
	return State{
		Step:     StepCustomerInfo,
		Draft:    NewDraft(id, planParam, dogsParam),
		Identity: id,
	}
}

// Event is the tagged union of things that can happen to a wizard.
type Event interface{ isEvent() }

// Next asks to advance one step, merging the step-local form edits first.
// Now is passed in so date validation stays deterministic under test.
type Next struct {
	Fields Draft
	Now    time.Time
}

// Back steps to the previous step. Never validated, never loses draft data.
type Back struct{}

// CheckoutStarted records the processor session handoff (4 → submitted).
type CheckoutStarted struct{ SessionID string }

// PaymentConfirmed moves a submitted wizard to its terminal confirmed state.
type PaymentConfirmed struct{ ConfirmationNumber string }

// PaymentFailed returns a submitted wizard to the payment step. Terminal
// means the processor gave a definitive failure and the session is dead;
// otherwise the session id is kept so the user can retry verification.
type PaymentFailed struct {
	Reason   string
	Terminal bool
}

func (Next) isEvent()             {}
func (Back) isEvent()             {}
func (CheckoutStarted) isEvent()  {}
func (PaymentConfirmed) isEvent() {}
func (PaymentFailed) isEvent()    {}

// Reduce is the pure transition function. Rejected transitions return the
// input state with FieldErrors or LastError set and the step unchanged; no
// partial advance ever happens.
func Reduce(s State, ev Event) State {
	s.FieldErrors = nil
	s.LastError = ""

	switch e := ev.(type) {
	case Next:
		return reduceNext(s, e)

	case Back:
		if s.Step > StepCustomerInfo && s.Step <= StepPayment {
			s.Step--
		}
		return s

	case CheckoutStarted:
		if s.Step != StepPayment {
			s.LastError = "checkout can only start from the payment step"
			return s
		}
		s.Step = StepSubmitted
		s.CheckoutSessionID = e.SessionID
		return s

	case PaymentConfirmed:
		if s.Step != StepSubmitted {
			s.LastError = "no payment in flight"
			return s
		}
		s.Step = StepConfirmed
		s.ConfirmationNumber = e.ConfirmationNumber
		return s

	case PaymentFailed:
		if s.Step != StepSubmitted {
			s.LastError = "no payment in flight"
			return s
		}
		s.Step = StepPayment
		s.LastError = e.Reason
		if e.Terminal {
			s.CheckoutSessionID = ""
		}
		return s
	}
	return s
}

func reduceNext(s State, e Next) State {
	switch s.Step {
	case StepCustomerInfo:
		s.Draft = mergeCustomerInfo(s.Draft, e.Fields)
		s.Draft = mergePlan(s.Draft, e.Fields)
		if errs := s.Draft.ValidateCustomerInfo(); len(errs) > 0 {
			s.FieldErrors = errs
			return s
		}
		s.Step = StepSchedule

	case StepSchedule:
		s.Draft = mergeSchedule(s.Draft, e.Fields)
		s.Draft = mergePlan(s.Draft, e.Fields)
		if errs := s.Draft.ValidateSchedule(e.Now); len(errs) > 0 {
			s.FieldErrors = errs
			return s
		}
		s.Step = StepReview

	case StepReview:
		// Review is read-only confirmation; plan, dogs, date and time are
		// frozen from here on. Edits require stepping back.
		s.Step = StepPayment

	default:
		s.LastError = "cannot advance from " + s.Step.String()
	}
	return s
}

func mergeCustomerInfo(dst, src Draft) Draft {
	dst.FirstName = src.FirstName
	dst.LastName = src.LastName
	// Email is the dedupe key shared with account registration; both store
	// it lowercased so a guest checkout finds the existing customer row.
	dst.Email = strings.ToLower(strings.TrimSpace(src.Email))
	dst.Phone = src.Phone
	dst.Address = src.Address
	dst.City = src.City
	dst.State = src.State
	dst.ZipCode = src.ZipCode
	return dst
}

func mergeSchedule(dst, src Draft) Draft {
	dst.ServiceDate = src.ServiceDate
	dst.ServiceTime = src.ServiceTime
	dst.SpecialInstructions = src.SpecialInstructions
	return dst
}

// mergePlan lets the first two steps adjust plan and dog count (the URL
// defaults are only a starting point).
func mergePlan(dst, src Draft) Draft {
	if src.Frequency != "" {
		dst.Frequency = ParseFrequency(string(src.Frequency))
	}
	if src.NumDogs != "" {
		dst.NumDogs = src.NumDogs
	}
	return dst
}
