package sensor

import (
	"time"

	"github.com/nerrad567/sundial-core/internal/solar"
)

// TwilightSensor is a virtual binary sensor that is active between the
// start and end instants of its configured twilight period.
type TwilightSensor struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	PositionSource string     `json:"position_source"`
	Mode           solar.Mode `json:"mode"`
	Enabled        bool       `json:"enabled"`
	Active         bool       `json:"active"`
	StateUpdatedAt time.Time  `json:"state_updated_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ScheduleStatus is a snapshot of a sensor's scheduler.
type ScheduleStatus struct {
	// Armed reports whether at least one timer is pending.
	Armed bool `json:"armed"`

	// Active is the sensor's current binary state.
	Active bool `json:"active"`

	// NextStart is the armed start instant, if a start timer is pending.
	NextStart *time.Time `json:"next_start,omitempty"`

	// NextEnd is the armed end instant, if an end timer is pending.
	NextEnd *time.Time `json:"next_end,omitempty"`
}
