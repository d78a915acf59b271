package services

import "fmt"

// Decision is the resolution of a leave-checkout prompt.
type Decision int

const (
	DecisionStay Decision = iota
	DecisionLeave
)

const leavePrompt = "Leave checkout? Your ticket selection will be lost."

// NavigationGuard traps back-navigation while a checkout is mounted so
// leaving is always an explicit decision. It is advisory only: a hard
// reload or closed tab still discards the in-memory view state, and the
// persisted booking session survives only until the next validation read.
type NavigationGuard struct {
	history History
	store   SessionStore
	armed   bool
}

// NewNavigationGuard creates a guard over the given history and session
// store capabilities.
func NewNavigationGuard(history History, store SessionStore) *NavigationGuard {
	return &NavigationGuard{history: history, store: store}
}

// Arm pushes a synthetic history entry so the next back action lands on
// the trap instead of silently leaving the route.
func (g *NavigationGuard) Arm() {
	g.history.Push("checkout")
	g.armed = true
}

// Armed reports whether the trap is currently active.
func (g *NavigationGuard) Armed() bool {
	return g.armed
}

// HandleBack resolves a trapped back-navigation attempt. Confirming clears
// the booking session and leaves; cancelling re-arms the trap and changes
// nothing.
func (g *NavigationGuard) HandleBack(confirmer Confirmer) (Decision, error) {
	if !confirmer.Confirm(leavePrompt) {
		g.history.Push("checkout")
		return DecisionStay, nil
	}
	g.armed = false
	if err := g.store.Clear(); err != nil {
		return DecisionLeave, fmt.Errorf("failed to clear session on exit: %w", err)
	}
	return DecisionLeave, nil
}

// HandleExit applies the same confirm-or-stay semantics to the in-page
// exit control. The history trap is not involved; staying does not push.
func (g *NavigationGuard) HandleExit(confirmer Confirmer) (Decision, error) {
	if !confirmer.Confirm(leavePrompt) {
		return DecisionStay, nil
	}
	g.armed = false
	if err := g.store.Clear(); err != nil {
		return DecisionLeave, fmt.Errorf("failed to clear session on exit: %w", err)
	}
	return DecisionLeave, nil
}
