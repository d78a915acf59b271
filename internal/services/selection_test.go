package services

import (
	"testing"

	"events-marketplace-web/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLineup() *models.Lineup {
	return &models.Lineup{
		ID:    "lineup-1",
		Title: "Friday Night",
		TicketTypes: []models.TicketType{
			{ID: "ga", Name: "General Admission", Price: 5000},
			{ID: "vip", Name: "VIP", Price: 15000},
		},
	}
}

func TestSelection_Increment(t *testing.T) {
	t.Run("increments from zero", func(t *testing.T) {
		selection := NewSelection("lineup-1")

		qty := selection.Increment("ga")

		assert.Equal(t, 1, qty)
		assert.Equal(t, 1, selection.Quantity("ga"))
	})

	t.Run("clamps at the per-type maximum", func(t *testing.T) {
		selection := NewSelection("lineup-1")

		var qty int
		for i := 0; i < MaxPerTicketType+1; i++ {
			qty = selection.Increment("ga")
		}

		assert.Equal(t, MaxPerTicketType, qty)
		assert.Equal(t, MaxPerTicketType, selection.Quantity("ga"))
	})
}

func TestSelection_Decrement(t *testing.T) {
	t.Run("decrements an existing quantity", func(t *testing.T) {
		selection := NewSelection("lineup-1")
		selection.Increment("ga")
		selection.Increment("ga")

		qty := selection.Decrement("ga")

		assert.Equal(t, 1, qty)
	})

	t.Run("is a no-op at zero", func(t *testing.T) {
		selection := NewSelection("lineup-1")

		qty := selection.Decrement("ga")

		assert.Equal(t, 0, qty)
		assert.Equal(t, 0, selection.Quantity("ga"))
	})
}

func TestSelection_Totals(t *testing.T) {
	t.Run("sums quantities and prices over the lineup", func(t *testing.T) {
		lineup := testLineup()
		selection := NewSelection(lineup.ID)
		selection.Increment("ga")
		selection.Increment("vip")
		selection.Increment("vip")

		assert.Equal(t, 3, selection.Total(lineup))
		assert.Equal(t, 35000, selection.Subtotal(lineup))
	})

	t.Run("ignores quantities for ticket types outside the lineup", func(t *testing.T) {
		lineup := testLineup()
		selection := NewSelection(lineup.ID)
		selection.Increment("ga")
		selection.Quantities["other-lineup-type"] = 4

		assert.Equal(t, 1, selection.Total(lineup))
		assert.Equal(t, 5000, selection.Subtotal(lineup))
	})
}

func TestSelection_ToBookingSession(t *testing.T) {
	t.Run("carries only positive quantities", func(t *testing.T) {
		selection := NewSelection("lineup-1")
		selection.Increment("ga")
		selection.Quantities["vip"] = 0

		booking := selection.ToBookingSession("event-1")

		require.NotNil(t, booking)
		assert.Equal(t, "event-1", booking.EventID)
		assert.Equal(t, "lineup-1", booking.LineupID)
		assert.Equal(t, map[string]int{"ga": 1}, booking.Quantities)
		assert.NotZero(t, booking.CreatedAt)
		assert.True(t, booking.HasTickets())
	})
}
