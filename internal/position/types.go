package position

import "time"

// Position is a geographic coordinate snapshot in decimal degrees.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PositionSource is a named, persisted origin of position updates.
//
// A source may be static (a site's fixed coordinates) or mobile (a
// vehicle GPS feeding sundial/position/{id} over MQTT). The stored
// coordinates are the last known position, used to seed trackers at
// startup.
type PositionSource struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
