package models

// Event is the catalog shape returned by the marketplace API. Only the
// fields the booking flow reads are modelled here.
type Event struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Currency string   `json:"currency"`
	Lineups  []Lineup `json:"lineups"`
}

// Lineup is a specific scheduled performance of an event, with its own
// ticket types and capacity.
type Lineup struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	StartsAt    string       `json:"starts_at"`
	TicketTypes []TicketType `json:"ticket_types"`
}

// TicketType is a purchasable category within a lineup.
type TicketType struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"` // minor currency units
}

// Lineup returns the lineup with the given ID, or nil.
func (e *Event) Lineup(id string) *Lineup {
	for i := range e.Lineups {
		if e.Lineups[i].ID == id {
			return &e.Lineups[i]
		}
	}
	return nil
}

// TicketType returns the ticket type with the given ID, or nil.
func (l *Lineup) TicketType(id string) *TicketType {
	for i := range l.TicketTypes {
		if l.TicketTypes[i].ID == id {
			return &l.TicketTypes[i]
		}
	}
	return nil
}
