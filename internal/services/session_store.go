package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"events-marketplace-web/internal/models"

	"github.com/gorilla/sessions"
)

// bookingSessionKey is the single storage entry the selection page writes
// and the checkout page reads.
const bookingSessionKey = "booking_session"

// CookieSessionStore keeps the BookingSession in the visitor's cookie
// session. It is request-scoped: handlers construct one per request and
// every Write/Clear saves the session back onto the response.
type CookieSessionStore struct {
	session *sessions.Session
	r       *http.Request
	w       http.ResponseWriter
}

// NewCookieSessionStore creates a session store bound to the given request.
func NewCookieSessionStore(store sessions.Store, r *http.Request, w http.ResponseWriter) (*CookieSessionStore, error) {
	session, err := store.Get(r, "session")
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &CookieSessionStore{session: session, r: r, w: w}, nil
}

// Write serializes and persists the booking session, overwriting any
// prior value.
func (s *CookieSessionStore) Write(booking *models.BookingSession) error {
	data, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}
	s.session.Values[bookingSessionKey] = string(data)
	if err := s.session.Save(s.r, s.w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Read deserializes the persisted booking session. Absence yields
// models.ErrSessionNotFound; a stored value that does not parse yields
// models.ErrSessionCorrupt. Callers treat both as "no usable session".
func (s *CookieSessionStore) Read() (*models.BookingSession, error) {
	raw, ok := s.session.Values[bookingSessionKey]
	if !ok {
		return nil, models.ErrSessionNotFound
	}

	str, ok := raw.(string)
	if !ok {
		return nil, models.ErrSessionCorrupt
	}

	var booking models.BookingSession
	if err := json.Unmarshal([]byte(str), &booking); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSessionCorrupt, err)
	}
	return &booking, nil
}

// Clear removes the persisted booking session. Clearing an absent session
// is not an error.
func (s *CookieSessionStore) Clear() error {
	delete(s.session.Values, bookingSessionKey)
	if err := s.session.Save(s.r, s.w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadValidSession runs the read-and-validate sequence every checkout
// reader uses. A session is valid when it belongs to the event being
// checked out and selects at least one ticket. Anything else is cleared
// from storage and reported as models.ErrSessionInvalid, so the caller's
// redirect back to the event page fires exactly once and cannot loop.
func LoadValidSession(store SessionStore, eventID string) (*models.BookingSession, error) {
	booking, err := store.Read()
	if err != nil {
		if errors.Is(err, models.ErrSessionCorrupt) {
			// Drop the value so repeated reads don't keep failing to parse.
			if clearErr := store.Clear(); clearErr != nil {
				return nil, fmt.Errorf("failed to clear corrupt session: %w", clearErr)
			}
		}
		return nil, models.ErrSessionInvalid
	}

	if !booking.MatchesEvent(eventID) || !booking.HasTickets() {
		if clearErr := store.Clear(); clearErr != nil {
			return nil, fmt.Errorf("failed to clear invalid session: %w", clearErr)
		}
		return nil, models.ErrSessionInvalid
	}

	return booking, nil
}
