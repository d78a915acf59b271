package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"events-marketplace-web/internal/middleware"
	"events-marketplace-web/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

const selectionDraftKey = "selection_draft"

// BookingHandler handles the ticket selection on the event page and the
// commit into a booking session.
type BookingHandler struct {
	catalog services.CatalogAPI
	store   sessions.Store
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(catalog services.CatalogAPI, store sessions.Store) *BookingHandler {
	return &BookingHandler{catalog: catalog, store: store}
}

// EventPage renders an event with its lineups and the ticket selector.
func (h *BookingHandler) EventPage(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	event, err := h.catalog.GetEvent(r.Context(), eventID)
	if err != nil {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}

	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	selection := getSelectionFromSession(session)

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>%s</title>
	<link href="/static/css/output.css" rel="stylesheet">
	<script src="/static/js/htmx.min.js"></script>
</head>
<body class="bg-gray-50">
	<div class="max-w-2xl mx-auto py-8">
		<h1 class="text-2xl font-bold mb-6">%s</h1>
`, event.Title, event.Title)

	for _, lineup := range event.Lineups {
		fmt.Fprintf(w, `		<div class="bg-white rounded-lg shadow p-4 mb-4">
			<h2 class="font-semibold mb-1">%s</h2>
			<p class="text-sm text-gray-500 mb-3">%s</p>
`, lineup.Title, lineup.StartsAt)
		for _, tt := range lineup.TicketTypes {
			qty := 0
			if selection != nil && selection.LineupID == lineup.ID {
				qty = selection.Quantity(tt.ID)
			}
			fmt.Fprintf(w, `			<div class="flex items-center justify-between py-2">
				<span>%s — %s %.2f</span>
				<span>
					<button hx-post="/events/%s/selection" hx-vals='{"lineup_id":"%s","ticket_type_id":"%s","op":"dec"}' hx-target="#selector-%s" class="border rounded px-2">-</button>
					<span id="qty-%s" class="mx-2">%d</span>
					<button hx-post="/events/%s/selection" hx-vals='{"lineup_id":"%s","ticket_type_id":"%s","op":"inc"}' hx-target="#selector-%s" class="border rounded px-2">+</button>
				</span>
			</div>
`, tt.Name, event.Currency, float64(tt.Price)/100,
				event.ID, lineup.ID, tt.ID, lineup.ID,
				tt.ID, qty,
				event.ID, lineup.ID, tt.ID, lineup.ID)
		}
		fmt.Fprintf(w, `			<div id="selector-%s"></div>
		</div>
`, lineup.ID)
	}

	fmt.Fprintf(w, `		<form hx-post="/events/%s/book" hx-target="#book-result">
			<div id="book-result"></div>
			<button type="submit" class="bg-primary-600 text-white px-6 py-3 rounded-lg font-medium">Book tickets</button>
		</form>
	</div>
</body>
</html>`, event.ID)
}

// AdjustSelection handles the +/- controls on the event page (HTMX). The
// draft selection lives in the visitor's session until it is committed.
func (h *BookingHandler) AdjustSelection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	eventID := chi.URLParam(r, "id")
	lineupID := r.FormValue("lineup_id")
	ticketTypeID := r.FormValue("ticket_type_id")
	op := r.FormValue("op")

	if lineupID == "" || ticketTypeID == "" {
		http.Error(w, "Missing lineup or ticket type", http.StatusBadRequest)
		return
	}

	event, err := h.catalog.GetEvent(r.Context(), eventID)
	if err != nil {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}

	lineup := event.Lineup(lineupID)
	if lineup == nil || lineup.TicketType(ticketTypeID) == nil {
		http.Error(w, "Ticket type not found", http.StatusNotFound)
		return
	}

	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	selection := getSelectionFromSession(session)
	// Quantities for other lineups stay in the draft but never count
	// toward this lineup's totals.
	selection.LineupID = lineupID

	var quantity int
	switch op {
	case "inc":
		quantity = selection.Increment(ticketTypeID)
	case "dec":
		quantity = selection.Decrement(ticketTypeID)
	default:
		http.Error(w, "Invalid operation", http.StatusBadRequest)
		return
	}

	saveSelectionToSession(session, selection)
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	total := selection.Total(lineup)
	subtotal := selection.Subtotal(lineup)

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `
		<div id="selection-summary">
			<span id="qty-%s" class="font-medium">%d</span>
			<p class="text-sm text-gray-700">%d ticket(s) selected</p>
			<p class="text-sm font-semibold">Subtotal: %s %.2f</p>
		</div>
	`, ticketTypeID, quantity, total, event.Currency, float64(subtotal)/100)
}

// CommitSelection freezes the draft into a booking session and sends the
// user to checkout. Blocked when nothing is selected or the visitor is
// unauthenticated.
func (h *BookingHandler) CommitSelection(w http.ResponseWriter, r *http.Request) {
	if middleware.AuthTokenFromContext(r.Context()) == "" {
		if middleware.IsHTMXRequest(r) {
			w.Header().Set("HX-Redirect", "/login")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	eventID := chi.URLParam(r, "id")

	event, err := h.catalog.GetEvent(r.Context(), eventID)
	if err != nil {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}

	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}

	selection := getSelectionFromSession(session)
	lineup := event.Lineup(selection.LineupID)
	if lineup == nil || selection.Total(lineup) == 0 {
		renderNotice(w, "error", "Select at least one ticket to continue.")
		return
	}

	sessionStore, err := services.NewCookieSessionStore(h.store, r, w)
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	if err := sessionStore.Write(selection.ToBookingSession(eventID)); err != nil {
		http.Error(w, "Failed to save booking", http.StatusInternalServerError)
		return
	}

	handleRedirect(w, r, fmt.Sprintf("/checkout/%s", eventID), http.StatusSeeOther)
}

func getSelectionFromSession(session *sessions.Session) *services.Selection {
	raw, ok := session.Values[selectionDraftKey]
	if !ok {
		return services.NewSelection("")
	}
	str, ok := raw.(string)
	if !ok {
		return services.NewSelection("")
	}
	var selection services.Selection
	if err := json.Unmarshal([]byte(str), &selection); err != nil {
		return services.NewSelection("")
	}
	if selection.Quantities == nil {
		selection.Quantities = make(map[string]int)
	}
	return &selection
}

func saveSelectionToSession(session *sessions.Session, selection *services.Selection) {
	data, err := json.Marshal(selection)
	if err != nil {
		return
	}
	session.Values[selectionDraftKey] = string(data)
}
