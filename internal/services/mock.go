package services

import (
	"context"
	"sync"

	"events-marketplace-web/internal/models"
)

// In-memory fakes for the external capabilities, used by handler and
// orchestrator tests and by local development without a live API.

// MemorySessionStore is an in-memory SessionStore.
type MemorySessionStore struct {
	mu      sync.Mutex
	booking *models.BookingSession
	corrupt bool

	Writes int
	Clears int
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (m *MemorySessionStore) Write(booking *models.BookingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.booking = booking
	m.corrupt = false
	m.Writes++
	return nil
}

func (m *MemorySessionStore) Read() (*models.BookingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.corrupt {
		return nil, models.ErrSessionCorrupt
	}
	if m.booking == nil {
		return nil, models.ErrSessionNotFound
	}
	return m.booking, nil
}

func (m *MemorySessionStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.booking = nil
	m.corrupt = false
	m.Clears++
	return nil
}

// Corrupt makes subsequent reads fail the way an unparsable stored value
// does.
func (m *MemorySessionStore) Corrupt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.booking = nil
	m.corrupt = true
}

// Stored returns the currently persisted session without read semantics.
func (m *MemorySessionStore) Stored() *models.BookingSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.booking
}

// MockCatalogAPI serves a fixed set of events.
type MockCatalogAPI struct {
	Events map[string]*models.Event
	Err    error
}

func (m *MockCatalogAPI) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	event, ok := m.Events[eventID]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	return event, nil
}

// MockPromoAPI returns a scripted verdict.
type MockPromoAPI struct {
	Verdict *PromoVerdict
	Err     error
	Calls   int
}

func (m *MockPromoAPI) CheckPromoCode(ctx context.Context, code, eventID string) (*PromoVerdict, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Verdict, nil
}

// MockOrderAPI records order submissions and returns a scripted outcome.
// Block can be armed so a submission parks until released, for testing
// the single-in-flight guarantee.
type MockOrderAPI struct {
	Outcome *models.OrderOutcome
	Err     error

	mu       sync.Mutex
	requests []*models.OrderCreateRequest

	Started chan struct{}
	Release chan struct{}
}

func (m *MockOrderAPI) CreateOrder(ctx context.Context, req *models.OrderCreateRequest) (*models.OrderOutcome, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Started != nil {
		m.Started <- struct{}{}
	}
	if m.Release != nil {
		<-m.Release
	}

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Outcome != nil {
		return m.Outcome, nil
	}
	return &models.OrderOutcome{PaymentMethod: string(models.MethodCard)}, nil
}

// Requests returns a snapshot of everything submitted so far.
func (m *MockOrderAPI) Requests() []*models.OrderCreateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.OrderCreateRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// MockIdentityAPI resolves any non-empty token to a fixed user.
type MockIdentityAPI struct {
	User *models.User
	Err  error
}

func (m *MockIdentityAPI) Resolve(ctx context.Context, token string) (*models.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if token == "" {
		return nil, models.ErrAuthRequired
	}
	if m.User != nil {
		return m.User, nil
	}
	return &models.User{ID: "user-1", Email: "user@example.com", Name: "Test User"}, nil
}

// MockCardGateway hands out canned tokens.
type MockCardGateway struct {
	NotReady bool
	Token    string
	Err      error
	Calls    int
}

func (m *MockCardGateway) Ready() bool {
	return !m.NotReady
}

func (m *MockCardGateway) Tokenize(ctx context.Context, card CardDetails) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if m.Token != "" {
		return m.Token, nil
	}
	return "tok_mock", nil
}

// RecordingHistory captures synthetic history pushes.
type RecordingHistory struct {
	Entries []string
}

func (h *RecordingHistory) Push(entry string) {
	h.Entries = append(h.Entries, entry)
}

// StaticConfirmer always answers the same way.
type StaticConfirmer struct {
	Answer  bool
	Prompts []string
}

func (c *StaticConfirmer) Confirm(prompt string) bool {
	c.Prompts = append(c.Prompts, prompt)
	return c.Answer
}
