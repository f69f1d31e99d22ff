// Package sensor implements twilight sensors: virtual binary sensors
// that are active between the start and end instants of a solar
// twilight period (sunrise or sunset).
//
// # Scheduling
//
// Each enabled sensor owns a Scheduler. On configuration the scheduler
// walks a rolling three-day window from the most recent local midnight,
// finds the first day whose event pair still has a future instant, and
// arms one single-shot timer per future instant. The start timer flips
// the state active; the end timer flips it inactive and computes the
// next cycle. Position changes trigger a full reschedule, which always
// disarms before re-arming so superseded timers never mutate state.
//
// # Fan-out
//
// State transitions flow through the Service to its sinks: retained
// MQTT state topics, the WebSocket broadcaster, and optionally InfluxDB
// history. The persisted row in SQLite always carries the last known
// state so restarts resume correctly.
package sensor
