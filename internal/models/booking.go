package models

// BookingSession is the client-persisted record of an in-progress ticket
// selection. It is written once on the event page when the user commits a
// selection, read once when the checkout route mounts, and destroyed on
// successful order completion or an explicit exit confirmation.
type BookingSession struct {
	EventID    string         `json:"eventId"`
	LineupID   string         `json:"lineupId"`
	Quantities map[string]int `json:"quantities"`
	CreatedAt  int64          `json:"timestamp"` // epoch millis, kept for debugging only
}

// HasTickets reports whether at least one ticket type is selected.
func (s *BookingSession) HasTickets() bool {
	for _, quantity := range s.Quantities {
		if quantity > 0 {
			return true
		}
	}
	return false
}

// MatchesEvent reports whether the session belongs to the event currently
// being checked out.
func (s *BookingSession) MatchesEvent(eventID string) bool {
	return s.EventID != "" && s.EventID == eventID
}
