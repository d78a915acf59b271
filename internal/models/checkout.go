package models

// CheckoutStep identifies where the checkout view is in its two-step
// sequence. The sequence only moves forward; there is no transition back
// from the confirmation step.
type CheckoutStep string

const (
	StepPayment      CheckoutStep = "payment"
	StepConfirmation CheckoutStep = "confirmation"
)

// PaymentMethod is the payment rail the user selected. Card payments are
// tokenized through the gateway and complete inline; PayPal hands the user
// off to the processor via redirect.
type PaymentMethod string

const (
	MethodCard   PaymentMethod = "stripe"
	MethodPayPal PaymentMethod = "paypal"
)

// PromoApplication records a successfully validated discount code. The
// discount amount is computed once from the subtotal at application time
// and frozen; it is never recomputed from later selection changes.
type PromoApplication struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	DiscountAmount int    `json:"discount_amount"` // minor currency units
}

// CheckoutState is the view state of a mounted checkout. It never leaves
// the checkout route; across requests it travels in the visitor's cookie
// session only. EventID scopes the state to the checkout that produced it,
// so leftovers from an abandoned checkout never bleed into another event's.
type CheckoutState struct {
	EventID       string            `json:"event_id"`
	Step          CheckoutStep      `json:"step"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Promo         *PromoApplication `json:"promo,omitempty"`
	ErrorMessage  string            `json:"error_message,omitempty"`
}
