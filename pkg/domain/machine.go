package domain

// NextState decides which state to run when no explicit state is requested.
//
// A widget that has never run is proposed its configured start state (the
// first element when the start state is a sequence). Otherwise the kind's
// transition table is consulted; a missing entry falls back to the start
// state. The decision is pure — no side effects, no history — so repeated
// queries during a single render pass are deterministic.
func NextState(w *Widget) string {
	if w.CurrentState == "" {
		return w.StartState()
	}
	if next, ok := w.Kind.Next(w.CurrentState); ok {
		return next
	}
	return w.StartState()
}
