package models

// OrderItem is one line of an order-creation request.
type OrderItem struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int    `json:"unit_price"`
	LineTotal    int    `json:"line_total"`
}

// OrderCreateRequest is the payload submitted to the marketplace order
// endpoint. Amounts are minor currency units. The reference is generated
// client-side so a retried submission after a transport failure stays
// idempotent on the API side.
type OrderCreateRequest struct {
	Items              []OrderItem   `json:"items"`
	SubTotal           int           `json:"sub_total"`
	TotalAmount        int           `json:"total_amount"`
	DiscountAmount     int           `json:"discount_amount"`
	PaymentMethod      PaymentMethod `json:"payment_method"`
	StripeToken        string        `json:"stripe_token,omitempty"`
	EventLineupID      string        `json:"event_lineup_id"`
	Currency           string        `json:"currency"`
	Source             string        `json:"source"`
	Reference          string        `json:"reference"`
	PromoCodeID        string        `json:"promo_code_id,omitempty"`
	CancelRedirectURL  string        `json:"cancel_redirect_url,omitempty"`
	SuccessRedirectURL string        `json:"success_redirect_url,omitempty"`
}

// OrderCreateResponse is the raw order endpoint response.
type OrderCreateResponse struct {
	PaymentMethod   string               `json:"payment_method"`
	PaymentResponse OrderPaymentResponse `json:"payment_response"`
}

// OrderPaymentResponse carries the processor's answer for the created order.
type OrderPaymentResponse struct {
	RedirectURL string `json:"redirect_url,omitempty"`
}

// OrderOutcome is the tagged interpretation of an order-creation response,
// so callers branch on a flag instead of probing the payload shape.
type OrderOutcome struct {
	PaymentMethod    string
	RequiresRedirect bool
	RedirectURL      string
}
