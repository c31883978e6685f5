package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/alohapoopscoop/scoop-service/booking"
	"github.com/alohapoopscoop/scoop-service/config/db"
	"github.com/alohapoopscoop/scoop-service/logger"
	"github.com/alohapoopscoop/scoop-service/models"
	"github.com/alohapoopscoop/scoop-service/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthMiddleware requires a valid customer session token. The customer id
// lands in the context under "sub" and the full record under
// "authenticated_customer".
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, err := parseBearerToken(c)
		if err != nil {
			logger.ErrorLogger.Errorf("Auth failed: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Invalid or missing session token."})
			return
		}

		customer, err := models.GetCustomerByID(c.Request.Context(), db.DB, customerID)
		if err != nil {
			logger.ErrorLogger.Errorf("Customer %s from token not found: %v", customerID, err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "USER_TOKEN_INVALID", "error": "Customer associated with token not found."})
			return
		}

		c.Set("sub", customerID.String())
		c.Set("authenticated_customer", customer)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves a session token when present but never
// rejects the request. The booking wizard uses it so guests and logged-in
// customers share the same endpoints.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID, err := parseBearerToken(c)
		if err != nil {
			c.Next()
			return
		}

		customer, err := models.GetCustomerByID(c.Request.Context(), db.DB, customerID)
		if err != nil {
			logger.WarnLogger.Warnf("Optional auth: token for unknown customer %s", customerID)
			c.Next()
			return
		}

		c.Set("sub", customerID.String())
		c.Set("authenticated_customer", customer)
		c.Next()
	}
}

// IdentityFromContext builds the read-only identity snapshot the wizard is
// constructed with. Guests get a zero-value identity.
func IdentityFromContext(c *gin.Context) booking.Identity {
	val, exists := c.Get("authenticated_customer")
	if !exists {
		return booking.Identity{}
	}
	customer, ok := val.(*models.Customer)
	if !ok {
		return booking.Identity{}
	}
	return booking.Identity{
		IsAuthenticated: true,
		CustomerID:      customer.ID.String(),
		Name:            customer.Name,
		Email:           customer.Email,
		Phone:           customer.Phone,
		Address:         customer.Address,
	}
}

func parseBearerToken(c *gin.Context) (uuid.UUID, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return uuid.Nil, fmt.Errorf("no authorization header")
	}
	if len(authHeader) < 8 || !strings.EqualFold(authHeader[:7], "bearer ") {
		return uuid.Nil, fmt.Errorf("invalid authorization header format")
	}
	rawToken := authHeader[7:]

	token, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return utils.GetJWTSecret(), nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, fmt.Errorf("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("sub claim missing")
	}
	return uuid.Parse(sub)
}
