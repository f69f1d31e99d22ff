package solar

import (
	"fmt"
	"time"
)

// Mode selects which twilight period a sensor tracks.
type Mode string

// Supported modes. Values are stored in SQLite and exposed over the API,
// so they are stable strings rather than iota constants.
const (
	ModeSunrise Mode = "sunrise"
	ModeSunset  Mode = "sunset"
)

// Valid reports whether the mode is one of the supported values.
func (m Mode) Valid() bool {
	return m == ModeSunrise || m == ModeSunset
}

// ParseMode converts a string to a Mode, validating it.
//
// Returns:
//   - Mode: The parsed mode
//   - error: ErrInvalidMode if the string is not a supported mode
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// DayEvents is the start/end instant pair for one twilight period on one
// calendar day. Start is never after End; both are absolute instants, so
// comparison against time.Now() is timezone-agnostic.
type DayEvents struct {
	Start time.Time
	End   time.Time
}

// TimeProvider computes the twilight event pair for a calendar day.
//
// Implementations must be pure: the same (date, lat, lon, mode) inputs
// always produce the same result, with no side effects. The scheduler
// relies on this when it re-queries the same day across reschedules.
type TimeProvider interface {
	// EventsForDay returns the start/end pair for the given mode on the
	// calendar day containing date. The time-of-day portion of date is
	// ignored; its Location determines the local day boundary.
	//
	// Returns ErrInvalidCoordinates for out-of-range lat/lon, or
	// ErrNoEvent when the period does not occur on that day (polar
	// summer/winter).
	EventsForDay(date time.Time, lat, lon float64, mode Mode) (DayEvents, error)
}

// Coordinate bounds in degrees.
const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0
)

// ValidateCoordinates checks that lat/lon are within valid ranges.
//
// Returns:
//   - error: ErrInvalidCoordinates describing the offending value, or nil
func ValidateCoordinates(lat, lon float64) error {
	if lat < minLatitude || lat > maxLatitude {
		return fmt.Errorf("%w: latitude %v out of range [%v, %v]", ErrInvalidCoordinates, lat, minLatitude, maxLatitude)
	}
	if lon < minLongitude || lon > maxLongitude {
		return fmt.Errorf("%w: longitude %v out of range [%v, %v]", ErrInvalidCoordinates, lon, minLongitude, maxLongitude)
	}
	return nil
}
