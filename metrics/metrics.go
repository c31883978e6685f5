package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scoop"

// Package-level counters for the money path. PostPaymentWriteFailures is
// the operator-visible signal for "payment captured but booking write
// failed" and must never stay at a non-alerted non-zero value.
var (
	CheckoutSessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_sessions_created_total",
		Help:      "The total number of payment checkout sessions created",
	})

	PaymentVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_verifications_total",
		Help:      "The total number of payment verification attempts by outcome",
	}, []string{"outcome"})

	PostPaymentWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_payment_write_failures_total",
		Help:      "Bookings that failed to persist after a confirmed payment",
	})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "The total number of bookings created after verified payment",
	})
)

// Verification outcome label values.
const (
	OutcomeConfirmed   = "confirmed"
	OutcomePending     = "pending"
	OutcomeExpired     = "expired"
	OutcomeDuplicate   = "duplicate"
	OutcomeGatewayErr  = "gateway_error"
	OutcomeWriteFailed = "write_failed"
)
