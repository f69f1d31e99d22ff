// Package solar computes twilight event pairs for the sensor scheduler.
//
// Each supported mode maps to a pair of instants on a calendar day:
//
//	sunrise: sunrise begin -> sunrise end (sun fully above horizon)
//	sunset:  sunset begin  -> sunset end (sun fully below horizon)
//
// The TimeProvider interface is the seam between the scheduler and the
// underlying astronomy. The production implementation (Calculator) wraps
// github.com/sixdouglas/suncalc; tests substitute fixed tables.
//
// All returned instants are absolute (time.Time carries the instant, not
// wall-clock), so callers compare against time.Now() without timezone
// arithmetic. Polar latitudes where a period does not occur on a given
// day yield ErrNoEvent rather than a degenerate pair.
package solar
