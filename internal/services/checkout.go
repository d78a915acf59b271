package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"events-marketplace-web/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// OrderSource tags order-creation requests with the surface that produced
// them.
const OrderSource = "web"

// CheckoutService owns the checkout lifecycle: the entry guards, promo
// application, payment submission and outcome handling. One instance
// serves all visitors; per-checkout mutual exclusion lives in the in-flight
// maps, keyed by checkout ID.
type CheckoutService struct {
	catalog  CatalogAPI
	orders   OrderAPI
	promoAPI PromoAPI
	identity IdentityAPI
	gateway  CardGateway

	// successDelay lets the success notice render before the redirect to
	// the confirmation page. Cosmetic only; zero in tests.
	successDelay time.Duration

	mu        sync.Mutex
	inflight  map[string]bool
	promoBusy map[string]bool
}

// NewCheckoutService creates the checkout orchestrator.
func NewCheckoutService(catalog CatalogAPI, orders OrderAPI, promoAPI PromoAPI, identity IdentityAPI, gateway CardGateway, successDelay time.Duration) *CheckoutService {
	return &CheckoutService{
		catalog:      catalog,
		orders:       orders,
		promoAPI:     promoAPI,
		identity:     identity,
		gateway:      gateway,
		successDelay: successDelay,
		inflight:     make(map[string]bool),
		promoBusy:    make(map[string]bool),
	}
}

// Checkout is one mounted checkout view: the validated booking session
// joined with the catalog data needed to price it, plus the view state.
type Checkout struct {
	ID      string
	Event   *models.Event
	Lineup  *models.Lineup
	Session *models.BookingSession
	State   models.CheckoutState
}

// Items prices the booked quantities into order lines. Only ticket types
// of the selected lineup are included.
func (c *Checkout) Items() []models.OrderItem {
	var items []models.OrderItem
	for _, tt := range c.Lineup.TicketTypes {
		quantity := c.Session.Quantities[tt.ID]
		if quantity <= 0 {
			continue
		}
		items = append(items, models.OrderItem{
			TicketTypeID: tt.ID,
			Quantity:     quantity,
			UnitPrice:    tt.Price,
			LineTotal:    quantity * tt.Price,
		})
	}
	return items
}

// Subtotal is the pre-discount sum over the booked lineup.
func (c *Checkout) Subtotal() int {
	subtotal := 0
	for _, item := range c.Items() {
		subtotal += item.LineTotal
	}
	return subtotal
}

// DiscountAmount is the frozen promo discount, zero when none is applied.
func (c *Checkout) DiscountAmount() int {
	if c.State.Promo == nil {
		return 0
	}
	return c.State.Promo.DiscountAmount
}

// Total is the payable amount after the frozen discount, never negative.
func (c *Checkout) Total() int {
	return TotalAfterDiscount(c.Subtotal(), c.State.Promo)
}

// Begin runs the checkout entry guards and assembles the checkout view.
// The identity resolution and the session validation race; whichever fails
// first wins and the caller redirects back to the event page. The session
// validator has already cleared bad storage by then, so that redirect
// cannot loop.
func (s *CheckoutService) Begin(ctx context.Context, checkoutID, eventID, authToken string, store SessionStore) (*Checkout, error) {
	var booking *models.BookingSession

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.identity.Resolve(gctx, authToken)
		return err
	})
	g.Go(func() error {
		validated, err := LoadValidSession(store, eventID)
		if err != nil {
			return err
		}
		booking = validated
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event for checkout: %w", err)
	}

	lineup := event.Lineup(booking.LineupID)
	if lineup == nil {
		// The booked lineup no longer exists; the session is unusable.
		if clearErr := store.Clear(); clearErr != nil {
			log.Printf("checkout: failed to clear session for missing lineup: %v", clearErr)
		}
		return nil, models.ErrSessionInvalid
	}

	return &Checkout{
		ID:      checkoutID,
		Event:   event,
		Lineup:  lineup,
		Session: booking,
		State: models.CheckoutState{
			EventID:       eventID,
			Step:          models.StepPayment,
			PaymentMethod: models.MethodCard,
		},
	}, nil
}

// ApplyPromo validates a code and freezes its discount against the current
// subtotal. Calls are serialized per checkout; a second apply while one is
// pending is a no-op returning models.ErrBusy.
func (s *CheckoutService) ApplyPromo(ctx context.Context, checkout *Checkout, code string) error {
	if !s.acquire(s.promoBusy, checkout.ID) {
		return models.ErrBusy
	}
	defer s.release(s.promoBusy, checkout.ID)

	verdict, err := s.promoAPI.CheckPromoCode(ctx, code, checkout.Event.ID)
	if err != nil {
		log.Printf("checkout: promo check failed: %v", err)
		return &models.PromoError{Reason: "Could not verify the promo code. Please try again."}
	}

	promo, err := NewPromoApplication(verdict, checkout.Subtotal())
	if err != nil {
		return err
	}

	checkout.State.Promo = promo
	return nil
}

// RemovePromo clears an applied code and its discount, returning totals to
// the undiscounted subtotal.
func (s *CheckoutService) RemovePromo(checkout *Checkout) {
	checkout.State.Promo = nil
}

// PaymentRequest carries what the pay action collected from the form.
type PaymentRequest struct {
	Method  models.PaymentMethod
	Card    CardDetails
	PageURL string // current page location, used to derive redirect return URLs
}

// SubmitResult is the outcome of a successful submission. Exactly one of
// RedirectURL (external processor finishes the flow, session kept) or
// Confirmed (order completed inline, session cleared) is set.
type SubmitResult struct {
	RedirectURL string
	Confirmed   bool
	Reference   string
}

// Submit runs the pay action. Only one submission may be in flight per
// checkout; a second pay click while one is pending is a no-op returning
// models.ErrBusy. On any failure the booking session is left untouched so
// the user can retry without re-selecting tickets.
func (s *CheckoutService) Submit(ctx context.Context, checkout *Checkout, store SessionStore, payment PaymentRequest) (*SubmitResult, error) {
	if !s.acquire(s.inflight, checkout.ID) {
		return nil, models.ErrBusy
	}
	defer s.release(s.inflight, checkout.ID)

	checkout.State.ErrorMessage = ""
	checkout.State.PaymentMethod = payment.Method

	var token string
	if payment.Method == models.MethodCard {
		if !s.gateway.Ready() {
			checkout.State.ErrorMessage = "The payment form is still loading. Please wait a moment and try again."
			return nil, models.ErrCardNotReady
		}
		created, err := s.gateway.Tokenize(ctx, payment.Card)
		if err != nil {
			var cardErr *models.CardError
			if errors.As(err, &cardErr) {
				checkout.State.ErrorMessage = cardErr.Reason
			} else {
				checkout.State.ErrorMessage = "Your card could not be processed."
			}
			return nil, err
		}
		token = created
	}

	orderReq := s.buildOrderRequest(checkout, payment, token)

	outcome, err := s.orders.CreateOrder(ctx, orderReq)
	if err != nil {
		// Session stays in storage so a retry keeps the selection.
		checkout.State.ErrorMessage = "We could not complete your order. Please try again."
		return nil, fmt.Errorf("order submission failed: %w", err)
	}

	if outcome.RequiresRedirect {
		// The external processor completes the flow, not this orchestrator:
		// keep the session until its callback confirms the order.
		return &SubmitResult{RedirectURL: outcome.RedirectURL, Reference: orderReq.Reference}, nil
	}

	if err := store.Clear(); err != nil {
		log.Printf("checkout: failed to clear booking session after order: %v", err)
	}
	checkout.State.Step = models.StepConfirmation
	if s.successDelay > 0 {
		time.Sleep(s.successDelay)
	}
	return &SubmitResult{Confirmed: true, Reference: orderReq.Reference}, nil
}

func (s *CheckoutService) buildOrderRequest(checkout *Checkout, payment PaymentRequest, token string) *models.OrderCreateRequest {
	orderReq := &models.OrderCreateRequest{
		Items:          checkout.Items(),
		SubTotal:       checkout.Subtotal(),
		TotalAmount:    checkout.Total(),
		DiscountAmount: checkout.DiscountAmount(),
		PaymentMethod:  payment.Method,
		StripeToken:    token,
		EventLineupID:  checkout.Lineup.ID,
		Currency:       checkout.Event.Currency,
		Source:         OrderSource,
		Reference:      uuid.NewString(),
	}
	if checkout.State.Promo != nil {
		orderReq.PromoCodeID = checkout.State.Promo.ID
	}
	if payment.Method == models.MethodPayPal {
		orderReq.SuccessRedirectURL = payment.PageURL + "?payment=success"
		orderReq.CancelRedirectURL = payment.PageURL + "?payment=cancelled"
	}
	return orderReq
}

func (s *CheckoutService) acquire(flags map[string]bool, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if flags[key] {
		return false
	}
	flags[key] = true
	return true
}

func (s *CheckoutService) release(flags map[string]bool, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(flags, key)
}
