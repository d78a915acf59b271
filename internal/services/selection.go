package services

import (
	"time"

	"events-marketplace-web/internal/models"
)

// MaxPerTicketType caps how many tickets of one type a single booking may
// hold.
const MaxPerTicketType = 10

// Selection tracks per-ticket-type quantities while the user is still on
// the event page. Quantities for ticket types of previously viewed lineups
// stay in the map but are excluded from totals, which only ever range over
// the currently selected lineup.
type Selection struct {
	LineupID   string         `json:"lineup_id"`
	Quantities map[string]int `json:"quantities"`
}

// NewSelection creates an empty selection for the given lineup.
func NewSelection(lineupID string) *Selection {
	return &Selection{
		LineupID:   lineupID,
		Quantities: make(map[string]int),
	}
}

// Increment raises the quantity for a ticket type by one, clamped at
// MaxPerTicketType. At the cap it is a no-op and returns the unchanged
// quantity.
func (s *Selection) Increment(ticketTypeID string) int {
	if s.Quantities == nil {
		s.Quantities = make(map[string]int)
	}
	quantity := s.Quantities[ticketTypeID]
	if quantity < MaxPerTicketType {
		quantity++
		s.Quantities[ticketTypeID] = quantity
	}
	return quantity
}

// Decrement lowers the quantity for a ticket type by one, clamped at zero.
func (s *Selection) Decrement(ticketTypeID string) int {
	if s.Quantities == nil {
		s.Quantities = make(map[string]int)
	}
	quantity := s.Quantities[ticketTypeID]
	if quantity > 0 {
		quantity--
		s.Quantities[ticketTypeID] = quantity
	}
	return quantity
}

// Quantity returns the current count for a ticket type.
func (s *Selection) Quantity(ticketTypeID string) int {
	return s.Quantities[ticketTypeID]
}

// Total is the aggregate ticket count over the given lineup's ticket types
// only.
func (s *Selection) Total(lineup *models.Lineup) int {
	total := 0
	for _, tt := range lineup.TicketTypes {
		total += s.Quantities[tt.ID]
	}
	return total
}

// Subtotal is the pre-discount price sum over the given lineup's ticket
// types only, in minor currency units.
func (s *Selection) Subtotal(lineup *models.Lineup) int {
	subtotal := 0
	for _, tt := range lineup.TicketTypes {
		subtotal += s.Quantities[tt.ID] * tt.Price
	}
	return subtotal
}

// ToBookingSession freezes the selection into the persisted booking
// session for the given event.
func (s *Selection) ToBookingSession(eventID string) *models.BookingSession {
	quantities := make(map[string]int, len(s.Quantities))
	for id, quantity := range s.Quantities {
		if quantity > 0 {
			quantities[id] = quantity
		}
	}
	return &models.BookingSession{
		EventID:    eventID,
		LineupID:   s.LineupID,
		Quantities: quantities,
		CreatedAt:  time.Now().UnixMilli(),
	}
}
