package solar

import (
	"errors"
	"testing"
	"time"
)

// Seattle. Well away from polar edge cases, used throughout.
const (
	testLat = 47.6
	testLon = -122.3
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"sunrise", ModeSunrise, false},
		{"sunset", ModeSunset, false},
		{"", "", true},
		{"Sunrise", "", true},
		{"noon", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidMode) {
				t.Errorf("ParseMode(%q) error = %v, want ErrInvalidMode", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"valid", testLat, testLon, false},
		{"equator", 0, 0, false},
		{"boundary north", 90, 0, false},
		{"boundary south", -90, 0, false},
		{"boundary east", 0, 180, false},
		{"boundary west", 0, -180, false},
		{"latitude too high", 90.1, 0, true},
		{"latitude too low", -90.1, 0, true},
		{"longitude too high", 0, 180.1, true},
		{"longitude too low", 0, -180.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lon)
			if tt.wantErr && !errors.Is(err, ErrInvalidCoordinates) {
				t.Errorf("ValidateCoordinates(%v, %v) error = %v, want ErrInvalidCoordinates", tt.lat, tt.lon, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateCoordinates(%v, %v) error = %v", tt.lat, tt.lon, err)
			}
		})
	}
}

func TestCalculator_EventsForDay(t *testing.T) {
	calc := NewCalculator()
	day := time.Date(2026, time.June, 21, 12, 0, 0, 0, time.UTC)

	for _, mode := range []Mode{ModeSunrise, ModeSunset} {
		t.Run(string(mode), func(t *testing.T) {
			events, err := calc.EventsForDay(day, testLat, testLon, mode)
			if err != nil {
				t.Fatalf("EventsForDay() error = %v", err)
			}

			if !events.Start.Before(events.End) {
				t.Errorf("Start %v not before End %v", events.Start, events.End)
			}

			// Twilight periods at mid latitudes last minutes, not hours.
			duration := events.End.Sub(events.Start)
			if duration <= 0 || duration > 30*time.Minute {
				t.Errorf("duration = %v, want (0, 30m]", duration)
			}

			// Both instants belong to the requested solar day.
			for _, instant := range []time.Time{events.Start, events.End} {
				diff := instant.Sub(day)
				if diff < -24*time.Hour || diff > 24*time.Hour {
					t.Errorf("instant %v too far from anchor %v", instant, day)
				}
			}
		})
	}
}

func TestCalculator_Deterministic(t *testing.T) {
	calc := NewCalculator()
	day := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

	first, err := calc.EventsForDay(day, testLat, testLon, ModeSunset)
	if err != nil {
		t.Fatalf("EventsForDay() error = %v", err)
	}
	second, err := calc.EventsForDay(day, testLat, testLon, ModeSunset)
	if err != nil {
		t.Fatalf("EventsForDay() error = %v", err)
	}

	if !first.Start.Equal(second.Start) || !first.End.Equal(second.End) {
		t.Errorf("repeated call differs: %+v vs %+v", first, second)
	}
}

func TestCalculator_TimeOfDayIgnored(t *testing.T) {
	calc := NewCalculator()
	early := time.Date(2026, time.June, 21, 0, 30, 0, 0, time.UTC)
	late := time.Date(2026, time.June, 21, 23, 30, 0, 0, time.UTC)

	a, err := calc.EventsForDay(early, testLat, testLon, ModeSunrise)
	if err != nil {
		t.Fatalf("EventsForDay(early) error = %v", err)
	}
	b, err := calc.EventsForDay(late, testLat, testLon, ModeSunrise)
	if err != nil {
		t.Fatalf("EventsForDay(late) error = %v", err)
	}

	if !a.Start.Equal(b.Start) || !a.End.Equal(b.End) {
		t.Errorf("same day, different time-of-day: %+v vs %+v", a, b)
	}
}

func TestCalculator_InvalidInputs(t *testing.T) {
	calc := NewCalculator()
	day := time.Date(2026, time.June, 21, 12, 0, 0, 0, time.UTC)

	if _, err := calc.EventsForDay(day, 91, 0, ModeSunrise); !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("latitude 91: error = %v, want ErrInvalidCoordinates", err)
	}
	if _, err := calc.EventsForDay(day, 0, -181, ModeSunrise); !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("longitude -181: error = %v, want ErrInvalidCoordinates", err)
	}
	if _, err := calc.EventsForDay(day, testLat, testLon, Mode("noon")); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("bad mode: error = %v, want ErrInvalidMode", err)
	}
}

func TestCalculator_PolarDay(t *testing.T) {
	calc := NewCalculator()
	// Svalbard in midsummer: the sun never sets, so no sunset pair exists.
	midsummer := time.Date(2026, time.June, 21, 12, 0, 0, 0, time.UTC)

	_, err := calc.EventsForDay(midsummer, 78.2, 15.6, ModeSunset)
	if !errors.Is(err, ErrNoEvent) {
		t.Errorf("polar day sunset: error = %v, want ErrNoEvent", err)
	}
}
