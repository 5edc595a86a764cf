package service

import (
	"errors"
	"fmt"
)

var (
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrInvalidClaim     = errors.New("invalid claim")
	ErrAlreadyClaimed   = errors.New("business is already claimed")
	ErrNoRecentServices = errors.New("no new services found near this location")
)

// ValidationError is a business-rule failure tied to one request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
