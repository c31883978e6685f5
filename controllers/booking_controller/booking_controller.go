package booking_controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/alohapoopscoop/scoop-service/booking"
	"github.com/alohapoopscoop/scoop-service/clients"
	"github.com/alohapoopscoop/scoop-service/config"
	"github.com/alohapoopscoop/scoop-service/logger"
	"github.com/alohapoopscoop/scoop-service/middlewares/auth"
	"github.com/alohapoopscoop/scoop-service/models"
	"github.com/alohapoopscoop/scoop-service/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// BookingController owns the booking wizard, checkout initiation and
// payment verification.
type BookingController struct {
	Store         Store
	Sessions      SessionStore
	Gateway       clients.StripeClientWrapper
	PublicBaseURL string

	// Now is injectable so date-gated transitions are deterministic in tests.
	Now func() time.Time
}

// NewBookingController wires the controller against postgres, redis and the
// payment gateway.
func NewBookingController(db *pgxpool.Pool, rdb *redis.Client, gateway clients.StripeClientWrapper) *BookingController {
	return &BookingController{
		Store:         &pgStore{db: db},
		Sessions:      &redisSessionStore{rdb: rdb},
		Gateway:       gateway,
		PublicBaseURL: config.GetEnv("PUBLIC_BASE_URL", "http://localhost:5173"),
		Now:           time.Now,
	}
}

// wizardView is the wire shape of a wizard snapshot.
type wizardView struct {
	WizardID           string            `json:"wizard_id"`
	Step               int               `json:"step"`
	StepName           string            `json:"step_name"`
	Draft              booking.Draft     `json:"draft"`
	Total              float64           `json:"total"`
	FieldErrors        map[string]string `json:"field_errors,omitempty"`
	LastError          string            `json:"last_error,omitempty"`
	CheckoutSessionID  string            `json:"checkout_session_id,omitempty"`
	ConfirmationNumber string            `json:"confirmation_number,omitempty"`
}

func viewOf(ws *models.WizardSession) wizardView {
	return wizardView{
		WizardID:           ws.ID,
		Step:               int(ws.State.Step),
		StepName:           ws.State.Step.String(),
		Draft:              ws.State.Draft,
		Total:              ws.State.Draft.Total(),
		FieldErrors:        ws.State.FieldErrors,
		LastError:          ws.State.LastError,
		CheckoutSessionID:  ws.State.CheckoutSessionID,
		ConfirmationNumber: ws.State.ConfirmationNumber,
	}
}

// StartWizard creates a wizard session, pre-filled from the authenticated
// customer (when present) and the plan/dogs URL defaults.
func (bc *BookingController) StartWizard(c *gin.Context) {
	var req struct {
		Plan string `json:"plan"`
		Dogs string `json:"dogs"`
	}
	// Defaults may arrive as query params (links from the pricing page) or
	// in the body; body wins when both are present.
	req.Plan = c.Query("plan")
	req.Dogs = c.Query("dogs")
	_ = c.ShouldBindJSON(&req)

	identity := auth.IdentityFromContext(c)
	ws := models.NewWizardSession(identity, req.Plan, req.Dogs)

	if err := bc.Sessions.SaveWizard(c.Request.Context(), ws); err != nil {
		logger.ErrorLogger.Errorf("Failed to start wizard: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start booking"})
		return
	}

	logger.InfoLogger.Infof("Wizard %s started (authenticated=%v, plan=%s)", ws.ID, identity.IsAuthenticated, ws.State.Draft.Frequency)
	c.JSON(http.StatusCreated, viewOf(ws))
}

// GetWizard returns the current wizard snapshot.
func (bc *BookingController) GetWizard(c *gin.Context) {
	ws, ok := bc.loadWizard(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, viewOf(ws))
}

// NextStep merges the step's form edits and attempts to advance. Validation
// failures keep the step and return field-level errors; the draft keeps the
// submitted values so the user corrects in place.
func (bc *BookingController) NextStep(c *gin.Context) {
	ws, ok := bc.loadWizard(c)
	if !ok {
		return
	}

	var fields booking.Draft
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ws.State = booking.Reduce(ws.State, booking.Next{Fields: fields, Now: bc.Now()})

	if err := bc.Sessions.SaveWizard(c.Request.Context(), ws); err != nil {
		logger.ErrorLogger.Errorf("Failed to save wizard %s: %v", ws.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save progress"})
		return
	}

	if len(ws.State.FieldErrors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, viewOf(ws))
		return
	}
	c.JSON(http.StatusOK, viewOf(ws))
}

// PrevStep steps back without validation, preserving every draft value.
func (bc *BookingController) PrevStep(c *gin.Context) {
	ws, ok := bc.loadWizard(c)
	if !ok {
		return
	}

	ws.State = booking.Reduce(ws.State, booking.Back{})

	if err := bc.Sessions.SaveWizard(c.Request.Context(), ws); err != nil {
		logger.ErrorLogger.Errorf("Failed to save wizard %s: %v", ws.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save progress"})
		return
	}
	c.JSON(http.StatusOK, viewOf(ws))
}

// ListTimeSlots exposes the fixed service windows for the schedule step.
func (bc *BookingController) ListTimeSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"time_slots": booking.TimeSlots})
}

// ListBookings returns the authenticated customer's booking history.
func (bc *BookingController) ListBookings(c *gin.Context) {
	customerID, err := utils.GetCustomerIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookings, err := bc.Store.ListBookingsByCustomer(c.Request.Context(), customerID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list bookings for %s: %v", customerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// CancelBooking cancels one of the caller's active bookings.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	customerID, err := utils.GetCustomerIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	err = bc.Store.CancelBooking(c.Request.Context(), bookingID, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found or not cancellable"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to cancel booking %s: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.BookingStatusCancelled})
}

func (bc *BookingController) loadWizard(c *gin.Context) (*models.WizardSession, bool) {
	ws, err := bc.Sessions.GetWizard(c.Request.Context(), c.Param("wizard_id"))
	if err != nil {
		if errors.Is(err, models.ErrWizardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking session not found or expired"})
		} else {
			logger.ErrorLogger.Errorf("Failed to load wizard %s: %v", c.Param("wizard_id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load booking session"})
		}
		return nil, false
	}
	return ws, true
}
