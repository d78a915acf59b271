package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"events-marketplace-web/internal/middleware"
	"events-marketplace-web/internal/models"
	"events-marketplace-web/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	checkoutStateKey = "checkout_state"
	checkoutIDKey    = "checkout_id"
)

// CheckoutHandler drives the checkout route: mount guards, promo code
// application, payment submission and the leave-confirmation trap.
type CheckoutHandler struct {
	checkout *services.CheckoutService
	store    sessions.Store
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(checkout *services.CheckoutService, store sessions.Store) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, store: store}
}

// mount re-runs the entry guards and rebuilds the checkout view for the
// current request, restoring any view state carried in the session. On a
// guard failure the user is redirected to the event page and mount
// reports false; the failed validation already cleared bad storage, so
// the redirect fires once and cannot loop.
func (h *CheckoutHandler) mount(w http.ResponseWriter, r *http.Request) (*services.Checkout, *services.CookieSessionStore, bool) {
	eventID := chi.URLParam(r, "id")

	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return nil, nil, false
	}

	checkoutID, ok := session.Values[checkoutIDKey].(string)
	if !ok || checkoutID == "" {
		checkoutID = uuid.NewString()
		session.Values[checkoutIDKey] = checkoutID
	}

	sessionStore, err := services.NewCookieSessionStore(h.store, r, w)
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return nil, nil, false
	}

	token := middleware.AuthTokenFromContext(r.Context())
	checkout, err := h.checkout.Begin(r.Context(), checkoutID, eventID, token, sessionStore)
	if err != nil {
		// Unauthenticated and invalid-session failures exit the same way:
		// back to the event page, never a broken checkout view.
		handleRedirect(w, r, "/events/"+eventID, http.StatusSeeOther)
		return nil, nil, false
	}

	if state := getCheckoutState(session, eventID); state != nil {
		checkout.State = *state
	}
	saveCheckoutState(session, &checkout.State)
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return nil, nil, false
	}

	return checkout, sessionStore, true
}

// CheckoutPage renders the payment step.
func (h *CheckoutHandler) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	checkout, _, ok := h.mount(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Checkout - %s</title>
	<link href="/static/css/output.css" rel="stylesheet">
	<script src="/static/js/htmx.min.js"></script>
</head>
<body class="bg-gray-50">
	<div class="max-w-2xl mx-auto py-8" id="checkout">
		<h1 class="text-2xl font-bold mb-2">%s</h1>
		<p class="text-gray-600 mb-6">%s</p>
		%s
		<div id="promo-area">%s</div>
		<form hx-post="/checkout/%s/pay" hx-target="#pay-result">
			<fieldset class="mb-4">
				<label><input type="radio" name="payment_method" value="stripe" checked> Card</label>
				<label class="ml-4"><input type="radio" name="payment_method" value="paypal"> PayPal</label>
			</fieldset>
			<div id="card-fields" class="mb-4">
				<input name="card_number" placeholder="Card number" class="border rounded p-2 w-full mb-2">
				<input name="card_exp_month" placeholder="MM" class="border rounded p-2 w-16">
				<input name="card_exp_year" placeholder="YYYY" class="border rounded p-2 w-20">
				<input name="card_cvc" placeholder="CVC" class="border rounded p-2 w-20">
			</div>
			<div id="pay-result"></div>
			<button type="submit" class="bg-primary-600 text-white px-6 py-3 rounded-lg">Pay %s %.2f</button>
		</form>
		<button hx-post="/checkout/%s/exit" hx-include="#exit-confirm" class="mt-4 text-sm text-gray-500 underline"
			onclick="document.getElementById('exit-confirm').value = confirm('Leave checkout? Your ticket selection will be lost.')">
			Exit checkout
		</button>
		<input type="hidden" id="exit-confirm" name="confirmed" value="false">
	</div>
	<script>
		// Trap the back button: park a synthetic entry and ask before leaving.
		history.pushState({checkout: true}, "");
		window.addEventListener("popstate", function () {
			var confirmed = confirm("Leave checkout? Your ticket selection will be lost.");
			fetch("/checkout/%s/back", {
				method: "POST",
				headers: {"Content-Type": "application/x-www-form-urlencoded"},
				body: "confirmed=" + confirmed
			}).then(function (resp) {
				if (resp.headers.get("X-Checkout-Guard") === "rearm") {
					history.pushState({checkout: true}, "");
				} else {
					window.location = "/events/%s";
				}
			});
		});
	</script>
</body>
</html>`,
		checkout.Event.Title,
		checkout.Event.Title,
		checkout.Lineup.Title,
		orderSummaryFragment(checkout),
		promoFragment(checkout),
		checkout.Event.ID,
		checkout.Event.Currency, float64(checkout.Total())/100,
		checkout.Event.ID,
		checkout.Event.ID,
		checkout.Event.ID,
	)
}

// ApplyPromo validates and applies a promo code (HTMX).
func (h *CheckoutHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	checkout, _, ok := h.mount(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	code := r.FormValue("promo_code")
	if code == "" {
		renderNotice(w, "error", "Enter a promo code first.")
		return
	}

	if err := h.checkout.ApplyPromo(r.Context(), checkout, code); err != nil {
		if errors.Is(err, models.ErrBusy) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		var promoErr *models.PromoError
		if errors.As(err, &promoErr) {
			renderNotice(w, "error", promoErr.Reason)
			return
		}
		renderNotice(w, "error", "Could not verify the promo code. Please try again.")
		return
	}

	h.persistState(w, r, &checkout.State)
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, promoFragment(checkout))
}

// RemovePromo drops an applied code and restores undiscounted totals (HTMX).
func (h *CheckoutHandler) RemovePromo(w http.ResponseWriter, r *http.Request) {
	checkout, _, ok := h.mount(w, r)
	if !ok {
		return
	}

	h.checkout.RemovePromo(checkout)
	h.persistState(w, r, &checkout.State)

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, promoFragment(checkout))
}

// Pay runs the order submission.
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	checkout, sessionStore, ok := h.mount(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	method := models.PaymentMethod(r.FormValue("payment_method"))
	if method != models.MethodCard && method != models.MethodPayPal {
		renderNotice(w, "error", "Choose a payment method first.")
		return
	}

	payment := services.PaymentRequest{
		Method: method,
		Card: services.CardDetails{
			Number:   r.FormValue("card_number"),
			ExpMonth: r.FormValue("card_exp_month"),
			ExpYear:  r.FormValue("card_exp_year"),
			CVC:      r.FormValue("card_cvc"),
		},
		PageURL: pageURL(r),
	}

	result, err := h.checkout.Submit(r.Context(), checkout, sessionStore, payment)
	if err != nil {
		h.persistState(w, r, &checkout.State)
		if errors.Is(err, models.ErrBusy) {
			// Second click while the first submission is pending.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusUnprocessableEntity)
		message := checkout.State.ErrorMessage
		if message == "" {
			message = "We could not complete your order. Please try again."
		}
		renderNotice(w, "error", message)
		return
	}

	if result.RedirectURL != "" {
		// Hand the browser to the external processor; the booking session
		// stays until its callback settles the order.
		handleRedirect(w, r, result.RedirectURL, http.StatusSeeOther)
		return
	}

	h.finishCheckout(w, r)
	handleRedirect(w, r, fmt.Sprintf("/checkout/%s/confirmation?ref=%s", checkout.Event.ID, result.Reference), http.StatusSeeOther)
}

// BackAttempt resolves a trapped back-navigation. The browser's confirm()
// answer arrives in the form; staying re-arms the trap via a response
// header the page script acts on.
func (h *CheckoutHandler) BackAttempt(w http.ResponseWriter, r *http.Request) {
	sessionStore, err := services.NewCookieSessionStore(h.store, r, w)
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	guard := services.NewNavigationGuard(&headerHistory{w: w}, sessionStore)
	decision, err := guard.HandleBack(&formConfirmer{confirmed: r.FormValue("confirmed") == "true"})
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	if decision == services.DecisionLeave {
		h.finishCheckout(w, r)
		handleRedirect(w, r, "/events/"+chi.URLParam(r, "id"), http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Exit resolves the in-page exit control with the same confirm semantics,
// without involving the history trap.
func (h *CheckoutHandler) Exit(w http.ResponseWriter, r *http.Request) {
	sessionStore, err := services.NewCookieSessionStore(h.store, r, w)
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	guard := services.NewNavigationGuard(&headerHistory{w: w}, sessionStore)
	decision, err := guard.HandleExit(&formConfirmer{confirmed: r.FormValue("confirmed") == "true"})
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	if decision == services.DecisionLeave {
		h.finishCheckout(w, r)
		handleRedirect(w, r, "/events/"+chi.URLParam(r, "id"), http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Confirmation renders the terminal step. Both exits leave the checkout
// route entirely.
func (h *CheckoutHandler) Confirmation(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("ref")

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Order confirmed</title>
	<link href="/static/css/output.css" rel="stylesheet">
</head>
<body class="bg-gray-50">
	<div class="max-w-xl mx-auto py-16 text-center">
		<h1 class="text-3xl font-bold text-green-700 mb-4">You're going!</h1>
		<p class="text-gray-600 mb-2">Your order is confirmed.</p>
		<p class="text-sm text-gray-500 mb-8">Reference: %s</p>
		<a href="/dashboard/tickets" class="bg-primary-600 text-white px-6 py-3 rounded-lg font-medium mr-2">View tickets</a>
		<a href="/events" class="text-primary-600 underline">Discover more events</a>
	</div>
</body>
</html>`, reference)
}

// finishCheckout drops the per-checkout view state once the flow ends,
// whatever the outcome.
func (h *CheckoutHandler) finishCheckout(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, "session")
	if err != nil {
		return
	}
	delete(session.Values, checkoutStateKey)
	delete(session.Values, checkoutIDKey)
	delete(session.Values, selectionDraftKey)
	if err := session.Save(r, w); err != nil {
		return
	}
}

func (h *CheckoutHandler) persistState(w http.ResponseWriter, r *http.Request, state *models.CheckoutState) {
	session, err := h.store.Get(r, "session")
	if err != nil {
		return
	}
	saveCheckoutState(session, state)
	session.Save(r, w)
}

func getCheckoutState(session *sessions.Session, eventID string) *models.CheckoutState {
	raw, ok := session.Values[checkoutStateKey]
	if !ok {
		return nil
	}
	str, ok := raw.(string)
	if !ok {
		return nil
	}
	var state models.CheckoutState
	if err := json.Unmarshal([]byte(str), &state); err != nil {
		return nil
	}
	// State left behind by an abandoned checkout for another event must not
	// carry its promo or step into this one.
	if state.EventID != eventID {
		return nil
	}
	return &state
}

func saveCheckoutState(session *sessions.Session, state *models.CheckoutState) {
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	session.Values[checkoutStateKey] = string(data)
}

// orderSummaryFragment renders the priced lines of the booking.
func orderSummaryFragment(checkout *services.Checkout) string {
	summary := `<div class="bg-white rounded-lg shadow p-4 mb-6">`
	for _, item := range checkout.Items() {
		tt := checkout.Lineup.TicketType(item.TicketTypeID)
		name := item.TicketTypeID
		if tt != nil {
			name = tt.Name
		}
		summary += fmt.Sprintf(
			`<p class="text-sm">%d × %s — %s %.2f</p>`,
			item.Quantity, name, checkout.Event.Currency, float64(item.LineTotal)/100,
		)
	}
	summary += fmt.Sprintf(`<p class="text-sm mt-2">Subtotal: %s %.2f</p>`,
		checkout.Event.Currency, float64(checkout.Subtotal())/100)
	if checkout.State.Promo != nil {
		summary += fmt.Sprintf(`<p class="text-sm text-green-700">Discount (%s): -%s %.2f</p>`,
			checkout.State.Promo.Code, checkout.Event.Currency, float64(checkout.State.Promo.DiscountAmount)/100)
	}
	summary += fmt.Sprintf(`<p class="font-semibold mt-2">Total: %s %.2f</p></div>`,
		checkout.Event.Currency, float64(checkout.Total())/100)
	return summary
}

// promoFragment renders the promo form or the applied promo line.
func promoFragment(checkout *services.Checkout) string {
	if checkout.State.Promo != nil {
		return fmt.Sprintf(`
			<div class="bg-green-50 border border-green-200 rounded-md p-3 mb-4">
				<p class="text-sm text-green-800">Promo "%s" applied: -%s %.2f</p>
				<button hx-post="/checkout/%s/promo/remove" hx-target="#promo-area" class="text-sm underline">Remove</button>
			</div>
		`, checkout.State.Promo.Code, checkout.Event.Currency,
			float64(checkout.State.Promo.DiscountAmount)/100, checkout.Event.ID)
	}
	return fmt.Sprintf(`
		<form hx-post="/checkout/%s/promo" hx-target="#promo-area" class="mb-4">
			<input name="promo_code" placeholder="Promo code" class="border rounded p-2">
			<button type="submit" class="text-sm underline ml-2">Apply</button>
		</form>
	`, checkout.Event.ID)
}

// headerHistory signals a re-arm to the page script through a response
// header; the script pushes the synthetic entry client-side.
type headerHistory struct {
	w http.ResponseWriter
}

func (h *headerHistory) Push(entry string) {
	h.w.Header().Set("X-Checkout-Guard", "rearm")
}

// formConfirmer relays the browser confirm() answer carried in the form.
type formConfirmer struct {
	confirmed bool
}

func (c *formConfirmer) Confirm(prompt string) bool {
	return c.confirmed
}
