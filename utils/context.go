package utils

import (
	"fmt"

	"github.com/alohapoopscoop/scoop-service/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetCustomerIDFromContext extracts the authenticated customer id set by the
// auth middleware under "sub" and parses it into a uuid.UUID.
func GetCustomerIDFromContext(c *gin.Context) (uuid.UUID, error) {
	sub, exists := c.Get("sub")
	if !exists {
		return uuid.Nil, ErrCustomerIDNotFound
	}

	subStr, ok := sub.(string)
	if !ok {
		logger.ErrorLogger.Errorf("Customer ID in context is not a string, actual type: %T", sub)
		return uuid.Nil, fmt.Errorf("internal server error: invalid customer ID format in context")
	}

	customerID, err := uuid.Parse(subStr)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse customer ID %q to UUID: %v", subStr, err)
		return uuid.Nil, fmt.Errorf("internal server error: invalid customer ID format")
	}
	return customerID, nil
}
