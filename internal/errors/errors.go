// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrSessionNotFound indicates no session exists for the given sender id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrVerifyTokenMismatch indicates the webhook verification token did not match.
	ErrVerifyTokenMismatch = errors.New("verify token mismatch")

	// ErrInvalidSignature indicates the webhook payload signature check failed.
	ErrInvalidSignature = errors.New("invalid payload signature")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrUnknownAction indicates a quick-reply or postback payload outside the
	// enumerated action set. Treated as a no-op by the dispatcher.
	ErrUnknownAction = errors.New("unknown action identifier")
)

// DeliveryError represents an outbound send failure with context.
// Sends are not retried; the session mutation is withheld on failure.
type DeliveryError struct {
	RecipientID string
	StatusCode  int
	Err         error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("delivery error (recipient=%s, status=%d): %v", e.RecipientID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("delivery error (recipient=%s): %v", e.RecipientID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// NewDeliveryError creates a new delivery error.
func NewDeliveryError(recipientID string, statusCode int, err error) *DeliveryError {
	return &DeliveryError{
		RecipientID: recipientID,
		StatusCode:  statusCode,
		Err:         err,
	}
}
