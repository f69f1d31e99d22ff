package solar

import "errors"

// Sentinel errors for solar time computation.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, solar.ErrNoEvent) {
//	    // Polar day/night, no twilight period today
//	}
var (
	// ErrInvalidMode indicates a mode string outside the supported set.
	ErrInvalidMode = errors.New("solar: invalid mode")

	// ErrInvalidCoordinates indicates out-of-range latitude or longitude.
	ErrInvalidCoordinates = errors.New("solar: invalid coordinates")

	// ErrNoEvent indicates the requested twilight period does not occur
	// on the given day (polar summer or winter).
	ErrNoEvent = errors.New("solar: no event for day")
)
