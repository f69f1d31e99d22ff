// Package position tracks the geographic coordinates that twilight
// sensors schedule against.
//
// A PositionSource is a persisted, named origin of coordinates: a fixed
// site, or a mobile unit publishing GPS fixes over MQTT. The Hub owns
// one Tracker per source; trackers expose the Source capability
// (current snapshot plus change subscription) that the scheduler
// consumes.
//
// Update flow:
//
//	MQTT sundial/position/{id} -> Hub.HandleUpdate -> Tracker.SetPosition
//	    -> subscriber callbacks (reschedule) -> repository (last known)
//
// Sensors reference sources by ID; deleting a source that sensors still
// use is rejected by the schema's foreign key constraint.
package position
