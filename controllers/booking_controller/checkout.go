package booking_controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/alohapoopscoop/scoop-service/booking"
	"github.com/alohapoopscoop/scoop-service/clients"
	"github.com/alohapoopscoop/scoop-service/logger"
	"github.com/alohapoopscoop/scoop-service/metrics"
	"github.com/alohapoopscoop/scoop-service/models"
	"github.com/alohapoopscoop/scoop-service/utils"
	"github.com/alohapoopscoop/scoop-service/utils/mail"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Metadata keys attached to the processor session. The serialized draft
// makes verification self-contained: resumption never depends on browser
// state that died at the redirect.
const (
	metaBookingData = "booking_data"
	metaCustomerID  = "customer_id"
	metaWizardID    = "wizard_id"
)

// StartCheckout creates the processor session for a wizard that reached the
// payment step, persists the pending-checkout correlation record, and hands
// back the hosted payment page URL.
func (bc *BookingController) StartCheckout(c *gin.Context) {
	ws, ok := bc.loadWizard(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// Returning from a canceled or abandoned handoff lands the user back on
	// the payment step; a fresh checkout replaces the previous session.
	if ws.State.Step == booking.StepSubmitted {
		ws.State = booking.Reduce(ws.State, booking.PaymentFailed{})
	}
	if ws.State.Step != booking.StepPayment {
		c.JSON(http.StatusConflict, gin.H{"error": "booking is not ready for payment"})
		return
	}

	draft := ws.State.Draft
	if errs := draft.Validate(bc.Now()); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "booking details are incomplete", "field_errors": errs})
		return
	}

	// The amount sent to the processor is always computed here from the
	// draft the processor will echo back; no client-supplied price exists.
	total := draft.Total()

	receiptEmail := draft.Email
	if ws.State.Identity.IsAuthenticated && ws.State.Identity.Email != "" {
		receiptEmail = ws.State.Identity.Email
	}

	draftJSON, err := json.Marshal(draft)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to serialize draft for wizard %s: %v", ws.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare checkout"})
		return
	}

	session, err := bc.Gateway.CreateCheckoutSession(ctx, clients.CreateSessionParams{
		AmountCents:   booking.Cents(total),
		Currency:      "usd",
		ProductName:   draft.LineItemName(),
		Description:   draft.LineItemDescription(),
		CustomerEmail: receiptEmail,
		SuccessURL:    bc.PublicBaseURL + "/booking?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     bc.PublicBaseURL + "/booking?canceled=true&wizard_id=" + ws.ID,
		Metadata: map[string]string{
			metaBookingData: string(draftJSON),
			metaCustomerID:  ws.State.Identity.CustomerID,
			metaWizardID:    ws.ID,
		},
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Checkout session creation failed for wizard %s: %v", ws.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment service is unavailable, please try again"})
		return
	}

	// The correlation record must exist before the browser leaves; it is
	// the only local state resumption can rely on.
	pending := &models.PendingCheckout{
		SessionID:  session.ID,
		WizardID:   ws.ID,
		CustomerID: ws.State.Identity.CustomerID,
		Draft:      draft,
	}
	if err := bc.Sessions.SavePending(ctx, pending); err != nil {
		logger.ErrorLogger.Errorf("Failed to persist pending checkout %s: %v", session.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare checkout, please try again"})
		return
	}

	ws.State = booking.Reduce(ws.State, booking.CheckoutStarted{SessionID: session.ID})
	if err := bc.Sessions.SaveWizard(ctx, ws); err != nil {
		logger.ErrorLogger.Errorf("Failed to save wizard %s after checkout start: %v", ws.ID, err)
	}

	metrics.CheckoutSessionsCreated.Inc()
	logger.InfoLogger.Infof("Checkout session %s created for wizard %s (%s, %s)",
		session.ID, ws.ID, draft.LineItemName(), booking.FormatPrice(total))

	c.JSON(http.StatusOK, gin.H{
		"url":        session.URL,
		"session_id": session.ID,
	})
}

// verifyRequest identifies the checkout to verify. Either reference works:
// the session id from the success URL, or the wizard id alone, from which
// the locally persisted pending checkout is recovered.
type verifyRequest struct {
	SessionID string `json:"session_id"`
	WizardID  string `json:"wizard_id"`
}

// VerifyPayment asks the processor for the authoritative session outcome
// and, only on confirmed payment, durably creates the booking. Repeating
// the call for an already-verified session returns the existing booking;
// the session id is the idempotency key.
func (bc *BookingController) VerifyPayment(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ctx := c.Request.Context()

	sessionID := req.SessionID
	if sessionID == "" && req.WizardID != "" {
		pending, err := bc.Sessions.GetPendingByWizard(ctx, req.WizardID)
		if err != nil {
			if errors.Is(err, models.ErrPendingCheckoutNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "reason": "no payment in progress"})
				return
			}
			logger.ErrorLogger.Errorf("Failed to recover pending checkout for wizard %s: %v", req.WizardID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "reason": "verification failed, please try again"})
			return
		}
		sessionID = pending.SessionID
	}
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id or wizard_id required"})
		return
	}

	// Idempotency check before anything else: a refresh of the confirmation
	// page must not touch the processor or write a second row. The wizard is
	// confirmed here as well, in case an earlier verify died between the
	// booking insert and its wizard update.
	if existing, err := bc.Store.GetBookingByCheckoutSession(ctx, sessionID); err == nil {
		metrics.PaymentVerifications.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		if pending, err := bc.Sessions.GetPending(ctx, sessionID); err == nil {
			bc.confirmWizard(ctx, pending.WizardID, existing.ConfirmationNumber)
			if err := bc.Sessions.DeletePending(ctx, pending); err != nil {
				logger.WarnLogger.Warnf("Failed to clear pending checkout %s: %v", sessionID, err)
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"success":             true,
			"confirmation_number": existing.ConfirmationNumber,
		})
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		logger.ErrorLogger.Errorf("Booking lookup failed for session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "reason": "verification failed, please try again"})
		return
	}

	session, err := bc.Gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		metrics.PaymentVerifications.WithLabelValues(metrics.OutcomeGatewayErr).Inc()
		logger.ErrorLogger.Errorf("Processor query failed for session %s: %v", sessionID, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "reason": "verification failed, please try again"})
		return
	}

	if session.PaymentStatus != clients.PaymentStatusPaid {
		if session.Status == clients.SessionStatusExpired {
			// Definitive failure: the session is dead, clear the pending
			// checkout so resumption cannot loop on it.
			metrics.PaymentVerifications.WithLabelValues(metrics.OutcomeExpired).Inc()
			logger.InfoLogger.Infof("Checkout session %s expired before payment", sessionID)
			bc.clearPending(ctx, sessionID)
			bc.failWizard(ctx, session.Metadata[metaWizardID], "payment session expired, please try again")
			c.JSON(http.StatusOK, gin.H{"success": false, "reason": "payment session expired", "terminal": true})
			return
		}
		// Not paid yet; the user may still be completing payment in another
		// tab. The pending checkout stays.
		metrics.PaymentVerifications.WithLabelValues(metrics.OutcomePending).Inc()
		c.JSON(http.StatusOK, gin.H{"success": false, "reason": "payment not completed yet"})
		return
	}

	result, err := bc.createVerifiedBooking(ctx, session)
	if err != nil {
		// Money has already moved. This must be loud and distinct from
		// ordinary failures, and the user must NOT be told to retry payment.
		metrics.PaymentVerifications.WithLabelValues(metrics.OutcomeWriteFailed).Inc()
		metrics.PostPaymentWriteFailures.Inc()
		logger.ErrorLogger.Errorf("[POST_PAYMENT_WRITE_FAILURE] session %s paid (%d cents) but booking write failed: %v",
			session.ID, session.AmountTotal, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":           false,
			"payment_captured":  true,
			"session_reference": session.ID,
			"reason":            "your payment succeeded but we could not record the booking; please contact support with this reference",
		})
		return
	}

	bc.clearPending(ctx, session.ID)
	bc.confirmWizard(ctx, session.Metadata[metaWizardID], result.ConfirmationNumber)

	metrics.PaymentVerifications.WithLabelValues(metrics.OutcomeConfirmed).Inc()
	metrics.BookingsCreated.Inc()
	logger.InfoLogger.Infof("Booking %s confirmed for session %s (%s)", result.ID, session.ID, result.ConfirmationNumber)

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"confirmation_number": result.ConfirmationNumber,
	})
}

// createVerifiedBooking resolves the customer and plan from the session
// metadata and inserts the booking with the processor-confirmed amount.
func (bc *BookingController) createVerifiedBooking(ctx context.Context, session *clients.CheckoutSession) (*models.Booking, error) {
	rawDraft := session.Metadata[metaBookingData]
	if rawDraft == "" {
		return nil, fmt.Errorf("booking data missing from session metadata")
	}
	var draft booking.Draft
	if err := json.Unmarshal([]byte(rawDraft), &draft); err != nil {
		return nil, fmt.Errorf("failed to decode booking metadata: %w", err)
	}
	if !draft.Frequency.IsValid() {
		return nil, fmt.Errorf("booking metadata carries unknown frequency %q", draft.Frequency)
	}

	customer, err := bc.resolveCustomer(ctx, session.Metadata[metaCustomerID], draft)
	if err != nil {
		return nil, err
	}

	plan, err := bc.Store.GetServicePlanByFrequency(ctx, draft.Frequency)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve service plan %q: %w", draft.Frequency, err)
	}

	b := &models.Booking{
		CustomerID:          customer.ID,
		ServicePlanID:       plan.ID,
		NumDogs:             draft.DogCount(),
		ServiceDate:         draft.ServiceDate,
		ServiceTime:         draft.ServiceTime,
		SpecialInstructions: draft.SpecialInstructions,
		// Trust boundary: the stored price is what the processor actually
		// charged, never a recomputed client-side figure.
		TotalPrice:         float64(session.AmountTotal) / 100,
		Address:            draft.FullAddress(),
		Status:             models.BookingStatusScheduled,
		ConfirmationNumber: utils.GenerateConfirmationNumber(),
		CheckoutSessionID:  session.ID,
	}

	created, err := bc.Store.CreateBooking(ctx, b)
	if errors.Is(err, models.ErrDuplicateBooking) {
		// A concurrent verification won the insert race; return its row.
		return bc.Store.GetBookingByCheckoutSession(ctx, session.ID)
	}
	if err != nil {
		return nil, err
	}

	go bc.sendConfirmationEmail(customer, plan, created)
	return created, nil
}

// resolveCustomer follows the metadata chain: attached authenticated id,
// then lookup by email, then a fresh customer record for the guest.
func (bc *BookingController) resolveCustomer(ctx context.Context, attachedID string, draft booking.Draft) (*models.Customer, error) {
	if attachedID != "" {
		id, err := uuid.Parse(attachedID)
		if err == nil {
			customer, err := bc.Store.GetCustomerByID(ctx, id)
			if err == nil {
				if customer.Address == "" {
					if err := bc.Store.UpdateCustomerAddressIfEmpty(ctx, customer.ID, draft.FullAddress()); err != nil {
						logger.WarnLogger.Warnf("Address backfill failed for customer %s: %v", customer.ID, err)
					}
				}
				return customer, nil
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("failed to load customer %s: %w", id, err)
			}
			logger.WarnLogger.Warnf("Attached customer %s not found, falling back to email lookup", id)
		}
	}

	existing, err := bc.Store.GetCustomerByEmail(ctx, draft.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up customer by email: %w", err)
	}

	customer, err := models.NewCustomer(draft.CustomerName(), draft.Email, draft.Phone, draft.FullAddress())
	if err != nil {
		return nil, err
	}
	return bc.Store.CreateCustomer(ctx, customer)
}

func (bc *BookingController) sendConfirmationEmail(customer *models.Customer, plan *models.ServicePlan, b *models.Booking) {
	err := mail.SendBookingConfirmation(customer.Email, mail.BookingConfirmationData{
		CustomerName:       customer.Name,
		ConfirmationNumber: b.ConfirmationNumber,
		PlanName:           plan.Name,
		ServiceDate:        b.ServiceDate,
		ServiceTime:        b.ServiceTime,
		Address:            b.Address,
		TotalPrice:         booking.FormatPrice(b.TotalPrice),
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Confirmation email failed for booking %s: %v", b.ID, err)
	}
}

// clearPending removes the correlation record after a terminal outcome.
// Best effort: a leftover record only costs one extra idempotent lookup.
func (bc *BookingController) clearPending(ctx context.Context, sessionID string) {
	pending, err := bc.Sessions.GetPending(ctx, sessionID)
	if err != nil {
		return
	}
	if err := bc.Sessions.DeletePending(ctx, pending); err != nil {
		logger.WarnLogger.Warnf("Failed to clear pending checkout %s: %v", sessionID, err)
	}
}

// confirmWizard advances the wizard to its terminal confirmed state, when
// that wizard is still around.
func (bc *BookingController) confirmWizard(ctx context.Context, wizardID, confirmation string) {
	bc.updateWizard(ctx, wizardID, booking.PaymentConfirmed{ConfirmationNumber: confirmation})
}

// failWizard returns the wizard to the payment step after a definitive
// processor failure.
func (bc *BookingController) failWizard(ctx context.Context, wizardID, reason string) {
	bc.updateWizard(ctx, wizardID, booking.PaymentFailed{Reason: reason, Terminal: true})
}

func (bc *BookingController) updateWizard(ctx context.Context, wizardID string, ev booking.Event) {
	if wizardID == "" {
		return
	}
	ws, err := bc.Sessions.GetWizard(ctx, wizardID)
	if err != nil {
		return // expired wizard; the verification outcome stands on its own
	}
	ws.State = booking.Reduce(ws.State, ev)
	if err := bc.Sessions.SaveWizard(ctx, ws); err != nil {
		logger.WarnLogger.Warnf("Failed to save wizard %s after verification: %v", wizardID, err)
	}
}
