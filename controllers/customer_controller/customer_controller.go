package customer_controller

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/alohapoopscoop/scoop-service/logger"
	"github.com/alohapoopscoop/scoop-service/models"
	"github.com/alohapoopscoop/scoop-service/utils"
	"github.com/alohapoopscoop/scoop-service/utils/mail"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	accessTokenValidity = 30 * 24 * time.Hour

	otpKeyPrefix = "password_reset_otp:"
	otpTTL       = 10 * time.Minute
)

// CustomerController owns account registration, login and the OTP-based
// password reset flow.
type CustomerController struct {
	db  *pgxpool.Pool
	rdb *redis.Client
}

func NewCustomerController(db *pgxpool.Pool, rdb *redis.Client) *CustomerController {
	return &CustomerController{db: db, rdb: rdb}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register creates an account. An existing passwordless customer record
// (created by a guest booking) is upgraded in place so the new account sees
// its booking history.
func (cc *CustomerController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	ctx := c.Request.Context()

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.ErrorLogger.Errorf("Password hashing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	existing, err := models.GetCustomerByEmail(ctx, cc.db, req.Email)
	switch {
	case err == nil && existing.PasswordHash != nil:
		c.JSON(http.StatusConflict, gin.H{"error": "an account with this email already exists"})
		return

	case err == nil:
		// Guest record from a past booking; attach credentials to it.
		if err := models.SetCustomerPassword(ctx, cc.db, existing.ID, hash); err != nil {
			logger.ErrorLogger.Errorf("Failed to upgrade guest customer %s: %v", existing.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
			return
		}
		cc.respondWithToken(c, http.StatusCreated, existing)
		return

	case !errors.Is(err, pgx.ErrNoRows):
		logger.ErrorLogger.Errorf("Customer lookup failed for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	customer, err := models.NewCustomer(req.Name, req.Email, req.Phone, req.Address)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to build customer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}
	customer.PasswordHash = &hash

	created, err := models.CreateCustomer(ctx, cc.db, customer)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create customer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	logger.InfoLogger.Infof("Customer %s registered", created.ID)
	cc.respondWithToken(c, http.StatusCreated, created)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password return the same answer.
func (cc *CustomerController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	customer, err := models.GetCustomerByEmail(c.Request.Context(), cc.db, req.Email)
	if err != nil || customer.PasswordHash == nil || !utils.VerifyPassword(req.Password, *customer.PasswordHash) {
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			logger.ErrorLogger.Errorf("Login lookup failed for %s: %v", req.Email, err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	logger.InfoLogger.Infof("Customer %s logged in", customer.ID)
	cc.respondWithToken(c, http.StatusOK, customer)
}

func (cc *CustomerController) respondWithToken(c *gin.Context, status int, customer *models.Customer) {
	token, err := utils.GenerateAccessToken(customer.ID, accessTokenValidity)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to issue token for %s: %v", customer.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign in"})
		return
	}
	c.JSON(status, gin.H{
		"access_token": token,
		"customer":     customer,
	})
}

// GetProfile returns the authenticated customer's record.
func (cc *CustomerController) GetProfile(c *gin.Context) {
	customerID, err := utils.GetCustomerIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	customer, err := models.GetCustomerByID(c.Request.Context(), cc.db, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		logger.ErrorLogger.Errorf("Profile lookup failed for %s: %v", customerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

type updateProfileRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// UpdateProfile rewrites the mutable profile fields. Email is the account
// identifier and cannot be changed here.
func (cc *CustomerController) UpdateProfile(c *gin.Context) {
	customerID, err := utils.GetCustomerIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	if err := models.UpdateCustomerProfile(ctx, cc.db, customerID, req.Name, req.Phone, req.Address); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		logger.ErrorLogger.Errorf("Profile update failed for %s: %v", customerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	customer, err := models.GetCustomerByID(ctx, cc.db, customerID)
	if err != nil {
		logger.ErrorLogger.Errorf("Profile reload failed for %s: %v", customerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword emails a short-lived OTP. The response is identical whether
// or not the email has an account, so the endpoint cannot be used to probe
// for registered addresses.
func (cc *CustomerController) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	ctx := c.Request.Context()

	neutral := gin.H{"message": "if an account exists for this email, a reset code has been sent"}

	customer, err := models.GetCustomerByEmail(ctx, cc.db, req.Email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			logger.ErrorLogger.Errorf("Reset lookup failed for %s: %v", req.Email, err)
		}
		c.JSON(http.StatusOK, neutral)
		return
	}

	otp := utils.GenerateSecureOTP()
	if err := cc.rdb.Set(ctx, otpKeyPrefix+req.Email, utils.HashOTP(otp), otpTTL).Err(); err != nil {
		logger.ErrorLogger.Errorf("Failed to store reset OTP for %s: %v", customer.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send reset code"})
		return
	}

	go func() {
		if err := mail.SendPasswordResetOTP(req.Email, otp); err != nil {
			logger.ErrorLogger.Errorf("Failed to send reset OTP to customer %s: %v", customer.ID, err)
		}
	}()

	logger.InfoLogger.Infof("Password reset OTP issued for customer %s", customer.ID)
	c.JSON(http.StatusOK, neutral)
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ResetPassword consumes the OTP and sets the new password. The OTP is
// single-use: it is deleted on success.
func (cc *CustomerController) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	ctx := c.Request.Context()

	key := otpKeyPrefix + req.Email
	storedHash, err := cc.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.ErrorLogger.Errorf("OTP lookup failed for %s: %v", req.Email, err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired reset code"})
		return
	}
	if utils.HashOTP(req.OTP) != storedHash {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired reset code"})
		return
	}

	customer, err := models.GetCustomerByEmail(ctx, cc.db, req.Email)
	if err != nil {
		logger.ErrorLogger.Errorf("Reset lookup failed for %s: %v", req.Email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired reset code"})
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		logger.ErrorLogger.Errorf("Password hashing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset password"})
		return
	}
	if err := models.SetCustomerPassword(ctx, cc.db, customer.ID, hash); err != nil {
		logger.ErrorLogger.Errorf("Failed to set password for %s: %v", customer.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset password"})
		return
	}

	if err := cc.rdb.Del(ctx, key).Err(); err != nil {
		logger.WarnLogger.Warnf("Failed to delete consumed OTP for %s: %v", customer.ID, err)
	}

	logger.InfoLogger.Infof("Password reset completed for customer %s", customer.ID)
	c.JSON(http.StatusOK, gin.H{"message": "password has been reset"})
}
