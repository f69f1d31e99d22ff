package sensor

import "time"

// Clock abstracts time for the scheduler so tests can drive it
// deterministically. The production implementation delegates to the
// time package.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time

	// AfterFunc arms a single-shot timer that runs f after d elapses.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable single-shot timer handle.
type Timer interface {
	// Stop prevents the timer from firing. It reports whether the call
	// stopped the timer before it fired.
	Stop() bool
}

// systemClock is the production Clock backed by the time package.
type systemClock struct{}

// SystemClock returns the real-time Clock.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
