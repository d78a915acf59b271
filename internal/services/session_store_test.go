package services

import (
	"net/http/httptest"
	"testing"

	"events-marketplace-web/internal/models"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBooking() *models.BookingSession {
	return &models.BookingSession{
		EventID:    "event-1",
		LineupID:   "lineup-1",
		Quantities: map[string]int{"ga": 2},
		CreatedAt:  1700000000000,
	}
}

func newTestCookieStore(t *testing.T) *CookieSessionStore {
	t.Helper()
	cookieStore := sessions.NewCookieStore([]byte("test-secret"))
	r := httptest.NewRequest("GET", "/checkout/event-1", nil)
	w := httptest.NewRecorder()

	store, err := NewCookieSessionStore(cookieStore, r, w)
	require.NoError(t, err)
	return store
}

func TestCookieSessionStore(t *testing.T) {
	t.Run("write then read round-trips the booking", func(t *testing.T) {
		store := newTestCookieStore(t)

		require.NoError(t, store.Write(testBooking()))

		booking, err := store.Read()
		require.NoError(t, err)
		assert.Equal(t, "event-1", booking.EventID)
		assert.Equal(t, "lineup-1", booking.LineupID)
		assert.Equal(t, map[string]int{"ga": 2}, booking.Quantities)
	})

	t.Run("read without a stored session", func(t *testing.T) {
		store := newTestCookieStore(t)

		_, err := store.Read()
		assert.ErrorIs(t, err, models.ErrSessionNotFound)
	})

	t.Run("read of an unparsable value reports corruption", func(t *testing.T) {
		store := newTestCookieStore(t)
		store.session.Values[bookingSessionKey] = "{not json"

		_, err := store.Read()
		assert.ErrorIs(t, err, models.ErrSessionCorrupt)
	})

	t.Run("clear removes the session and is idempotent", func(t *testing.T) {
		store := newTestCookieStore(t)
		require.NoError(t, store.Write(testBooking()))

		require.NoError(t, store.Clear())
		_, err := store.Read()
		assert.ErrorIs(t, err, models.ErrSessionNotFound)

		require.NoError(t, store.Clear())
	})
}

func TestLoadValidSession(t *testing.T) {
	t.Run("returns a matching session with tickets", func(t *testing.T) {
		store := NewMemorySessionStore()
		require.NoError(t, store.Write(testBooking()))

		booking, err := LoadValidSession(store, "event-1")
		require.NoError(t, err)
		assert.Equal(t, "lineup-1", booking.LineupID)
		assert.Zero(t, store.Clears)
	})

	t.Run("missing session is invalid", func(t *testing.T) {
		store := NewMemorySessionStore()

		_, err := LoadValidSession(store, "event-1")
		assert.ErrorIs(t, err, models.ErrSessionInvalid)
	})

	t.Run("event mismatch clears the stored session", func(t *testing.T) {
		store := NewMemorySessionStore()
		require.NoError(t, store.Write(testBooking()))

		_, err := LoadValidSession(store, "event-2")
		assert.ErrorIs(t, err, models.ErrSessionInvalid)
		assert.Equal(t, 1, store.Clears)

		// The bad value is gone, so the next read cannot loop back here.
		_, err = store.Read()
		assert.ErrorIs(t, err, models.ErrSessionNotFound)
	})

	t.Run("session without tickets clears the stored session", func(t *testing.T) {
		store := NewMemorySessionStore()
		booking := testBooking()
		booking.Quantities = map[string]int{}
		require.NoError(t, store.Write(booking))

		_, err := LoadValidSession(store, "event-1")
		assert.ErrorIs(t, err, models.ErrSessionInvalid)
		assert.Equal(t, 1, store.Clears)
	})

	t.Run("corrupt storage is cleared", func(t *testing.T) {
		store := NewMemorySessionStore()
		store.Corrupt()

		_, err := LoadValidSession(store, "event-1")
		assert.ErrorIs(t, err, models.ErrSessionInvalid)
		assert.Equal(t, 1, store.Clears)
	})
}
