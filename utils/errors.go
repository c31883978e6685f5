// utils/errors.go
package utils

import "errors"

var ErrCustomerIDNotFound = errors.New("authentication required: customer ID not found")
