package solar

import (
	"fmt"
	"time"

	"github.com/sixdouglas/suncalc"
)

// Calculator computes twilight event pairs using the suncalc algorithm.
//
// It implements TimeProvider. The zero value is ready to use; Calculator
// holds no state and is safe for concurrent use.
type Calculator struct{}

// NewCalculator returns a suncalc-backed TimeProvider.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Event pair per mode:
//   - sunrise: top of sun touches horizon -> sun fully above horizon
//   - sunset: sun starts to descend into horizon -> sun fully below horizon
var modeEvents = map[Mode][2]suncalc.DayTimeName{
	ModeSunrise: {suncalc.Sunrise, suncalc.SunriseEnd},
	ModeSunset:  {suncalc.SunsetStart, suncalc.Sunset},
}

// EventsForDay returns the start/end instants for the given mode on the
// calendar day containing date.
//
// The computation is anchored at local noon of date's day to avoid
// suncalc's nearest-day rounding selecting an adjacent day near
// midnight boundaries.
//
// Parameters:
//   - date: Any instant within the target calendar day (Location matters)
//   - lat, lon: Position in degrees
//   - mode: Which twilight period to compute
//
// Returns:
//   - DayEvents: Start/end pair, Start <= End
//   - error: ErrInvalidCoordinates, ErrInvalidMode, or ErrNoEvent
func (c *Calculator) EventsForDay(date time.Time, lat, lon float64, mode Mode) (DayEvents, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return DayEvents{}, err
	}
	names, ok := modeEvents[mode]
	if !ok {
		return DayEvents{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	year, month, day := date.Date()
	noon := time.Date(year, month, day, 12, 0, 0, 0, date.Location())

	times := suncalc.GetTimes(noon, lat, lon)
	start := times[names[0]].Value
	end := times[names[1]].Value

	if !validInstant(start, noon) || !validInstant(end, noon) || end.Before(start) {
		return DayEvents{}, fmt.Errorf("%w: mode %s on %s at (%v, %v)",
			ErrNoEvent, mode, noon.Format("2006-01-02"), lat, lon)
	}

	return DayEvents{Start: start, End: end}, nil
}

// validInstant rejects the degenerate timestamps suncalc produces when
// the sun never crosses the relevant horizon angle (polar day/night).
// A real event always falls within a day of the anchor instant.
func validInstant(t, anchor time.Time) bool {
	if t.IsZero() {
		return false
	}
	diff := t.Sub(anchor)
	if diff < 0 {
		diff = -diff
	}
	return diff <= 24*time.Hour
}
