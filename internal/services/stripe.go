package services

import (
	"context"

	"events-marketplace-web/internal/models"

	"github.com/stripe/stripe-go/v82"
)

// StripeGateway tokenizes card details through the Stripe API. An unset
// secret key leaves the gateway not ready, and pay attempts are rejected
// before any network call.
type StripeGateway struct {
	client *stripe.Client
}

// NewStripeGateway creates a card gateway. With an empty secret key the
// gateway reports not ready.
func NewStripeGateway(secretKey string) *StripeGateway {
	if secretKey == "" {
		return &StripeGateway{}
	}
	return &StripeGateway{client: stripe.NewClient(secretKey)}
}

// Ready reports whether the gateway finished initializing.
func (g *StripeGateway) Ready() bool {
	return g.client != nil
}

// Tokenize requests a single-use payment token for the given card details.
func (g *StripeGateway) Tokenize(ctx context.Context, card CardDetails) (string, error) {
	if g.client == nil {
		return "", models.ErrCardNotReady
	}
	if card.Number == "" || card.ExpMonth == "" || card.ExpYear == "" || card.CVC == "" {
		return "", &models.CardError{Reason: "Card details are missing or incomplete."}
	}

	params := &stripe.TokenCreateParams{
		Card: &stripe.CardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.String(card.ExpMonth),
			ExpYear:  stripe.String(card.ExpYear),
			CVC:      stripe.String(card.CVC),
		},
	}

	token, err := g.client.V1Tokens.Create(ctx, params)
	if err != nil {
		return "", &models.CardError{Reason: "Your card could not be processed. Please check the details and try again."}
	}
	return token.ID, nil
}
