package position

// Source exposes a current position snapshot and change notifications.
//
// The scheduler depends on this capability interface, not on Tracker,
// so tests can substitute fixed or scripted sources.
type Source interface {
	// Current returns the latest position snapshot.
	Current() Position

	// Subscribe registers a callback invoked on every position change.
	// The returned handle cancels the subscription; Cancel is idempotent.
	Subscribe(fn func(Position)) Handle
}

// Handle cancels a position subscription.
type Handle interface {
	// Cancel removes the subscription. Safe to call multiple times.
	Cancel()
}
