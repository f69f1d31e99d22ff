package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSensorState records a twilight sensor state transition.
//
// This is the primary method for recording sensor activity history.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - slug: Sensor slug (e.g., "porch-sunset")
//   - mode: Sensor mode ("sunrise" or "sunset")
//   - active: The new state after the transition
//   - at: When the transition occurred
//
// Example:
//
//	client.WriteSensorState("porch-sunset", "sunset", true, time.Now())
func (c *Client) WriteSensorState(slug string, mode string, active bool, at time.Time) {
	if !c.IsConnected() {
		return
	}

	activeValue := 0
	if active {
		activeValue = 1
	}

	point := write.NewPoint(
		"sensor_state",
		map[string]string{
			"sensor": slug,
			"mode":   mode,
		},
		map[string]interface{}{
			"active": activeValue,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WriteSolarEvent records a computed solar event and when it is scheduled.
//
// Used for auditing the scheduler: each arming cycle records the start
// and end instants it armed timers for.
//
// Parameters:
//   - slug: Sensor slug
//   - event: Event kind ("start" or "end")
//   - scheduledFor: The computed event instant
func (c *Client) WriteSolarEvent(slug string, event string, scheduledFor time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"solar_event",
		map[string]string{
			"sensor": slug,
			"event":  event,
		},
		map[string]interface{}{
			"scheduled_for": scheduledFor.UnixMilli(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., backfilled data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
