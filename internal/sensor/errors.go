package sensor

import "errors"

// Sentinel errors for sensor operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, sensor.ErrNotFound) {
//	    // Return 404
//	}
var (
	// ErrNotFound indicates the requested sensor does not exist.
	ErrNotFound = errors.New("sensor: not found")

	// ErrExists indicates a create collided with an existing sensor ID or slug.
	ErrExists = errors.New("sensor: already exists")

	// ErrValidation indicates a sensor failed validation.
	ErrValidation = errors.New("sensor: validation failed")

	// ErrNoFutureEvent indicates the scheduling window was exhausted
	// without finding a future event instant. The scheduler stays
	// disarmed until the next external trigger.
	ErrNoFutureEvent = errors.New("sensor: no future event in window")
)
