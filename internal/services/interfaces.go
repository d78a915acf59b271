package services

import (
	"context"

	"events-marketplace-web/internal/models"
)

// SessionStore persists the in-progress booking selection across page
// loads. The cookie-backed implementation is the production store; the
// interface keeps the checkout state machine testable without a browser.
type SessionStore interface {
	Write(session *models.BookingSession) error
	Read() (*models.BookingSession, error)
	Clear() error
}

// CatalogAPI reads event detail (lineups, ticket types, prices) from the
// marketplace API.
type CatalogAPI interface {
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
}

// PromoAPI validates a promo code against the marketplace API.
type PromoAPI interface {
	CheckPromoCode(ctx context.Context, code, eventID string) (*PromoVerdict, error)
}

// OrderAPI submits order-creation requests to the marketplace API.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req *models.OrderCreateRequest) (*models.OrderOutcome, error)
}

// IdentityAPI resolves the visitor's auth token to an authenticated user.
// Returns models.ErrAuthRequired when the token is absent or rejected.
type IdentityAPI interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// CardDetails is the raw card input collected by the payment form.
type CardDetails struct {
	Number   string
	ExpMonth string
	ExpYear  string
	CVC      string
}

// CardGateway turns card details into a single-use payment token. Ready
// reports whether the gateway finished initializing; submissions while it
// is not ready are rejected before any network call.
type CardGateway interface {
	Ready() bool
	Tokenize(ctx context.Context, card CardDetails) (string, error)
}

// History is the minimal slice of browser history the navigation guard
// needs: pushing a synthetic entry to trap the back action.
type History interface {
	Push(entry string)
}

// Confirmer presents a blocking leave-or-stay decision to the user.
type Confirmer interface {
	Confirm(prompt string) bool
}
