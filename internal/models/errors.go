package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application
var (
	ErrSessionNotFound = errors.New("booking session not found")
	ErrSessionCorrupt  = errors.New("booking session unparsable")
	ErrSessionInvalid  = errors.New("booking session invalid")
	ErrAuthRequired    = errors.New("authentication required")
	ErrEventNotFound   = errors.New("event not found")
	ErrCardNotReady    = errors.New("card gateway not initialized")
	ErrBusy            = errors.New("operation already in progress")
)

// CardError is a failure acquiring a payment token from the card gateway.
// It is surfaced inline near the payment form and the user can retry.
type CardError struct {
	Reason string
}

func (e *CardError) Error() string {
	return fmt.Sprintf("card error: %s", e.Reason)
}

// PromoError is a rejected or unverifiable promo code. Reason is shown to
// the user; for semantic rejections it is the server-provided reason.
type PromoError struct {
	Reason string
}

func (e *PromoError) Error() string {
	return fmt.Sprintf("promo code error: %s", e.Reason)
}
