package mqtt

import "fmt"

// Topic prefixes for the Sundial MQTT hierarchy.
//
// State topics are retained so new subscribers immediately learn the
// current sensor state. Position topics are plain events published by
// whatever tracks the position (GPS bridge, manual tooling, tests).
const (
	// TopicPrefix is the base for all Sundial topics.
	TopicPrefix = "sundial"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "sundial/system"
)

// Topics provides builders for Sundial MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.SensorState("porch-sunset")
//	// Returns: "sundial/state/sensor/porch-sunset"
type Topics struct{}

// SensorState returns the retained state topic for a twilight sensor.
//
// Example: sundial/state/sensor/porch-sunset
func (Topics) SensorState(slug string) string {
	return fmt.Sprintf("%s/state/sensor/%s", TopicPrefix, slug)
}

// SensorEvent returns the topic for sensor lifecycle events.
//
// Example: sundial/event/sensor/porch-sunset
func (Topics) SensorEvent(slug string) string {
	return fmt.Sprintf("%s/event/sensor/%s", TopicPrefix, slug)
}

// PositionUpdate returns the topic carrying position updates for a source.
//
// Example: sundial/position/rv-gps
func (Topics) PositionUpdate(sourceID string) string {
	return fmt.Sprintf("%s/position/%s", TopicPrefix, sourceID)
}

// AllPositionUpdates returns a pattern matching every position source.
//
// Pattern: sundial/position/+
func (Topics) AllPositionUpdates() string {
	return fmt.Sprintf("%s/position/+", TopicPrefix)
}

// SystemStatus returns the system status topic (online/offline, LWT).
//
// Example: sundial/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// PositionSourceFromTopic extracts the source ID from a position update topic.
// Returns "" if the topic does not match the position hierarchy.
func PositionSourceFromTopic(topic string) string {
	prefix := TopicPrefix + "/position/"
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return ""
	}
	return topic[len(prefix):]
}
