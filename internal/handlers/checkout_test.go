package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"events-marketplace-web/internal/models"
	"events-marketplace-web/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secondEvent() *models.Event {
	return &models.Event{
		ID:       "event-2",
		Title:    "Winter Gala",
		Currency: "USD",
		Lineups: []models.Lineup{
			{
				ID:    "lineup-2",
				Title: "Saturday Night",
				TicketTypes: []models.TicketType{
					{ID: "early", Name: "Early Bird", Price: 2500},
				},
			},
		},
	}
}

type checkoutTestEnv struct {
	router *chi.Mux
	store  sessions.Store
	orders *services.MockOrderAPI
	promo  *services.MockPromoAPI
}

func newCheckoutEnv(t *testing.T) *checkoutTestEnv {
	t.Helper()
	store := sessions.NewCookieStore([]byte("test-secret"))
	catalog := &services.MockCatalogAPI{Events: map[string]*models.Event{
		"event-1": testEvent(),
		"event-2": secondEvent(),
	}}
	orders := &services.MockOrderAPI{}
	promo := &services.MockPromoAPI{}
	service := services.NewCheckoutService(catalog, orders, promo, &services.MockIdentityAPI{}, &services.MockCardGateway{}, 0)
	handler := NewCheckoutHandler(service, store)

	r := chi.NewRouter()
	r.Get("/checkout/{id}", handler.CheckoutPage)
	r.Post("/checkout/{id}/promo", handler.ApplyPromo)
	r.Post("/checkout/{id}/promo/remove", handler.RemovePromo)
	r.Post("/checkout/{id}/pay", handler.Pay)
	r.Post("/checkout/{id}/back", handler.BackAttempt)
	r.Post("/checkout/{id}/exit", handler.Exit)
	r.Get("/checkout/{id}/confirmation", handler.Confirmation)
	return &checkoutTestEnv{router: r, store: store, orders: orders, promo: promo}
}

// writeBooking persists a booking session on top of an existing session
// cookie (empty for a fresh visitor), the way the event page's book action
// does, and returns the cookie to replay on the next request.
func (env *checkoutTestEnv) writeBooking(t *testing.T, cookie string, booking *models.BookingSession) string {
	t.Helper()
	r := httptest.NewRequest("GET", "/checkout/"+booking.EventID, nil)
	if cookie != "" {
		r.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	session, err := env.store.Get(r, "session")
	require.NoError(t, err)

	data, err := json.Marshal(booking)
	require.NoError(t, err)
	session.Values["booking_session"] = string(data)
	require.NoError(t, session.Save(r, w))

	return lastCookie(t, w)
}

// seedBooking persists the default event-1 booking for a fresh visitor.
func (env *checkoutTestEnv) seedBooking(t *testing.T) string {
	t.Helper()
	return env.writeBooking(t, "", &models.BookingSession{
		EventID:    "event-1",
		LineupID:   "lineup-1",
		Quantities: map[string]int{"ga": 2},
		CreatedAt:  1700000000000,
	})
}

// lastCookie returns the final session cookie a handler wrote. Handlers
// that save the session more than once emit several Set-Cookie headers;
// only the last value reflects all writes.
func lastCookie(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	c := cookies[len(cookies)-1]
	return c.Name + "=" + c.Value
}

func TestCheckoutHandler_CheckoutPage(t *testing.T) {
	t.Run("without a booking session redirects to the event page", func(t *testing.T) {
		env := newCheckoutEnv(t)

		req := authenticated(httptest.NewRequest("GET", "/checkout/event-1", nil))
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/events/event-1", w.Header().Get("Location"))
	})

	t.Run("without an auth token redirects to the event page", func(t *testing.T) {
		env := newCheckoutEnv(t)
		cookie := env.seedBooking(t)

		req := httptest.NewRequest("GET", "/checkout/event-1", nil)
		req.Header.Set("Cookie", cookie)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/events/event-1", w.Header().Get("Location"))
	})

	t.Run("valid session renders the payment step", func(t *testing.T) {
		env := newCheckoutEnv(t)
		cookie := env.seedBooking(t)

		req := authenticated(httptest.NewRequest("GET", "/checkout/event-1", nil))
		req.Header.Set("Cookie", cookie)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Summer Festival")
		assert.Contains(t, w.Body.String(), "USD 100.00")
	})
}

func TestCheckoutHandler_Pay(t *testing.T) {
	t.Run("card payment confirms and redirects to the confirmation page", func(t *testing.T) {
		env := newCheckoutEnv(t)
		cookie := env.seedBooking(t)

		req := authenticated(formRequest("/checkout/event-1/pay",
			"payment_method=stripe&card_number=4242424242424242&card_exp_month=12&card_exp_year=2028&card_cvc=123"))
		req.Header.Set("Cookie", cookie)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "/checkout/event-1/confirmation?ref=")
		assert.Len(t, env.orders.Requests(), 1)
	})

	t.Run("missing payment method is rejected", func(t *testing.T) {
		env := newCheckoutEnv(t)
		cookie := env.seedBooking(t)

		req := authenticated(formRequest("/checkout/event-1/pay", ""))
		req.Header.Set("Cookie", cookie)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Contains(t, w.Body.String(), "Choose a payment method first.")
		assert.Empty(t, env.orders.Requests())
	})

	t.Run("redirect outcome hands the browser to the processor", func(t *testing.T) {
		env := newCheckoutEnv(t)
		env.orders.Outcome = &models.OrderOutcome{
			PaymentMethod:    "paypal",
			RequiresRedirect: true,
			RedirectURL:      "https://paypal.example/approve/123",
		}
		cookie := env.seedBooking(t)

		req := authenticated(formRequest("/checkout/event-1/pay", "payment_method=paypal"))
		req.Header.Set("Cookie", cookie)
		req.Header.Set("HX-Request", "true")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://paypal.example/approve/123", w.Header().Get("HX-Redirect"))
	})
}

func TestCheckoutHandler_Pay_OrderFailure(t *testing.T) {
	t.Run("order failure renders the notice with an error status", func(t *testing.T) {
		env := newCheckoutEnv(t)
		env.orders.Err = errors.New("tickets no longer available")
		cookie := env.seedBooking(t)

		req := authenticated(formRequest("/checkout/event-1/pay",
			"payment_method=stripe&card_number=4242424242424242&card_exp_month=12&card_exp_year=2028&card_cvc=123"))
		req.Header.Set("Cookie", cookie)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "We could not complete your order. Please try again.")
	})
}

func TestCheckoutHandler_StaleViewState(t *testing.T) {
	t.Run("abandoned checkout state for another event is discarded", func(t *testing.T) {
		env := newCheckoutEnv(t)
		env.promo.Verdict = &services.PromoVerdict{
			Valid: true,
			Promo: &services.PromoCode{ID: "promo-1", Code: "TEN", DiscountValue: 10, DiscountType: services.DiscountPercentage},
		}

		// Apply a promo on event-1's checkout (subtotal 10000).
		cookie := env.seedBooking(t)
		req := authenticated(formRequest("/checkout/event-1/promo", "promo_code=TEN"))
		req.Header.Set("Cookie", cookie)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		cookie = lastCookie(t, w)

		// Abandon it without the exit confirm: navigate away and book
		// event-2 (subtotal 5000) in the same browser session.
		cookie = env.writeBooking(t, cookie, &models.BookingSession{
			EventID:    "event-2",
			LineupID:   "lineup-2",
			Quantities: map[string]int{"early": 2},
			CreatedAt:  1700000000000,
		})

		payReq := authenticated(formRequest("/checkout/event-2/pay",
			"payment_method=stripe&card_number=4242424242424242&card_exp_month=12&card_exp_year=2028&card_cvc=123"))
		payReq.Header.Set("Cookie", cookie)
		w = httptest.NewRecorder()
		env.router.ServeHTTP(w, payReq)

		require.Equal(t, http.StatusSeeOther, w.Code)
		requests := env.orders.Requests()
		require.Len(t, requests, 1)
		assert.Empty(t, requests[0].PromoCodeID)
		assert.Equal(t, 0, requests[0].DiscountAmount)
		assert.Equal(t, 5000, requests[0].TotalAmount)
	})
}

func TestCheckoutHandler_BackAttempt(t *testing.T) {
	t.Run("cancelling re-arms the trap", func(t *testing.T) {
		env := newCheckoutEnv(t)
		cookie := env.seedBooking(t)

		req := formRequest("/checkout/event-1/back", "confirmed=false")
		req.Header.Set("Cookie", cookie)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "rearm", w.Header().Get("X-Checkout-Guard"))
	})

	t.Run("confirming clears the booking and leaves", func(t *testing.T) {
		env := newCheckoutEnv(t)
		cookie := env.seedBooking(t)

		req := formRequest("/checkout/event-1/back", "confirmed=true")
		req.Header.Set("Cookie", cookie)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/events/event-1", w.Header().Get("Location"))
		assert.Empty(t, w.Header().Get("X-Checkout-Guard"))
	})
}

func TestCheckoutHandler_Exit(t *testing.T) {
	t.Run("cancelling stays on the page", func(t *testing.T) {
		env := newCheckoutEnv(t)
		cookie := env.seedBooking(t)

		req := formRequest("/checkout/event-1/exit", "confirmed=false")
		req.Header.Set("Cookie", cookie)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("confirming leaves for the event page", func(t *testing.T) {
		env := newCheckoutEnv(t)
		cookie := env.seedBooking(t)

		req := formRequest("/checkout/event-1/exit", "confirmed=true")
		req.Header.Set("Cookie", cookie)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/events/event-1", w.Header().Get("Location"))
	})
}

func TestCheckoutHandler_Confirmation(t *testing.T) {
	t.Run("renders the reference and the two exits", func(t *testing.T) {
		env := newCheckoutEnv(t)

		req := httptest.NewRequest("GET", "/checkout/event-1/confirmation?ref=abc-123", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "abc-123")
		assert.Contains(t, w.Body.String(), "/dashboard/tickets")
		assert.Contains(t, w.Body.String(), "/events")
	})
}
