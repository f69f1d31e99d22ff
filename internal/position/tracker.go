package position

import (
	"sync"

	"github.com/nerrad567/sundial-core/internal/solar"
)

// Tracker is the concrete Source for one position source.
//
// It holds the last known position and fans change notifications out to
// subscribers. Updates arrive via SetPosition, typically driven by the
// Hub's MQTT handler.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Subscriber callbacks run synchronously on the updating goroutine,
//     outside the tracker's lock. Callbacks must not block for long.
type Tracker struct {
	sourceID string

	mu      sync.RWMutex
	pos     Position
	subs    map[uint64]func(Position)
	nextSub uint64
}

// NewTracker creates a tracker for sourceID seeded with an initial position.
func NewTracker(sourceID string, initial Position) *Tracker {
	return &Tracker{
		sourceID: sourceID,
		pos:      initial,
		subs:     make(map[uint64]func(Position)),
	}
}

// SourceID returns the position source this tracker follows.
func (t *Tracker) SourceID() string {
	return t.sourceID
}

// Current returns the latest position snapshot.
func (t *Tracker) Current() Position {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pos
}

// Subscribe registers a callback for position changes.
//
// The callback fires on every accepted SetPosition, not on subscription.
// Callers needing the current value should read Current() first.
func (t *Tracker) Subscribe(fn func(Position)) Handle {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	return &subscription{tracker: t, id: id}
}

// SetPosition validates and stores a new position, then notifies subscribers.
//
// Returns:
//   - error: solar.ErrInvalidCoordinates if lat/lon are out of range;
//     the stored position is left unchanged
func (t *Tracker) SetPosition(p Position) error {
	if err := solar.ValidateCoordinates(p.Latitude, p.Longitude); err != nil {
		return err
	}

	t.mu.Lock()
	t.pos = p
	// Snapshot subscribers so callbacks run outside the lock and a
	// callback may cancel its own subscription without deadlocking.
	callbacks := make([]func(Position), 0, len(t.subs))
	for _, fn := range t.subs {
		callbacks = append(callbacks, fn)
	}
	t.mu.Unlock()

	for _, fn := range callbacks {
		fn(p)
	}
	return nil
}

// subscription is the Handle returned by Subscribe.
type subscription struct {
	tracker *Tracker
	id      uint64
	once    sync.Once
}

// Cancel removes the subscription. Idempotent.
func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.tracker.mu.Lock()
		delete(s.tracker.subs, s.id)
		s.tracker.mu.Unlock()
	})
}
