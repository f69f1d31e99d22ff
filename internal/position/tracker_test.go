package position

import (
	"errors"
	"testing"

	"github.com/nerrad567/sundial-core/internal/solar"
)

func TestTracker_Current(t *testing.T) {
	tracker := NewTracker("site", Position{Latitude: 47.6, Longitude: -122.3})

	got := tracker.Current()
	if got.Latitude != 47.6 || got.Longitude != -122.3 {
		t.Errorf("Current() = %+v, want seeded position", got)
	}
}

func TestTracker_SetPositionNotifies(t *testing.T) {
	tracker := NewTracker("site", Position{})

	var received []Position
	tracker.Subscribe(func(p Position) {
		received = append(received, p)
	})

	want := Position{Latitude: 10, Longitude: 20}
	if err := tracker.SetPosition(want); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}

	if len(received) != 1 || received[0] != want {
		t.Errorf("received = %v, want [%+v]", received, want)
	}
	if tracker.Current() != want {
		t.Errorf("Current() = %+v, want %+v", tracker.Current(), want)
	}
}

func TestTracker_SetPositionInvalid(t *testing.T) {
	seed := Position{Latitude: 47.6, Longitude: -122.3}
	tracker := NewTracker("site", seed)

	notified := false
	tracker.Subscribe(func(Position) { notified = true })

	err := tracker.SetPosition(Position{Latitude: 91, Longitude: 0})
	if !errors.Is(err, solar.ErrInvalidCoordinates) {
		t.Errorf("SetPosition() error = %v, want ErrInvalidCoordinates", err)
	}
	if notified {
		t.Error("subscriber notified for rejected position")
	}
	if tracker.Current() != seed {
		t.Errorf("Current() = %+v, want unchanged %+v", tracker.Current(), seed)
	}
}

func TestTracker_CancelStopsNotifications(t *testing.T) {
	tracker := NewTracker("site", Position{})

	count := 0
	handle := tracker.Subscribe(func(Position) { count++ })

	if err := tracker.SetPosition(Position{Latitude: 1, Longitude: 1}); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	handle.Cancel()
	if err := tracker.SetPosition(Position{Latitude: 2, Longitude: 2}); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}

	if count != 1 {
		t.Errorf("callback count = %d, want 1", count)
	}
}

func TestTracker_CancelIdempotent(t *testing.T) {
	tracker := NewTracker("site", Position{})

	a := tracker.Subscribe(func(Position) {})
	b := tracker.Subscribe(func(Position) {})

	a.Cancel()
	a.Cancel()
	a.Cancel()

	// b must survive repeated cancels of a.
	count := 0
	tracker.mu.RLock()
	count = len(tracker.subs)
	tracker.mu.RUnlock()
	if count != 1 {
		t.Errorf("remaining subscriptions = %d, want 1", count)
	}
	b.Cancel()
}

func TestTracker_CallbackMayCancelOwnSubscription(t *testing.T) {
	tracker := NewTracker("site", Position{})

	var handle Handle
	fired := 0
	handle = tracker.Subscribe(func(Position) {
		fired++
		handle.Cancel()
	})

	if err := tracker.SetPosition(Position{Latitude: 1, Longitude: 1}); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	if err := tracker.SetPosition(Position{Latitude: 2, Longitude: 2}); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}

	if fired != 1 {
		t.Errorf("callback fired %d times, want 1", fired)
	}
}

func TestTracker_MultipleSubscribers(t *testing.T) {
	tracker := NewTracker("site", Position{})

	var a, b int
	tracker.Subscribe(func(Position) { a++ })
	tracker.Subscribe(func(Position) { b++ })

	if err := tracker.SetPosition(Position{Latitude: 5, Longitude: 5}); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}

	if a != 1 || b != 1 {
		t.Errorf("subscriber counts = (%d, %d), want (1, 1)", a, b)
	}
}
