package sensor

import (
	"encoding/json"
	"time"

	"github.com/nerrad567/sundial-core/internal/infrastructure/mqtt"
)

// StateSink receives sensor state transitions for fan-out to consumers
// (MQTT, WebSocket clients, time-series storage). Implementations must
// be fast or internally asynchronous; sinks are invoked on the timer
// callback path.
type StateSink interface {
	SensorStateChanged(s *TwilightSensor)
}

// statePayload is the JSON body published on state topics and
// broadcast to WebSocket clients.
type statePayload struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Mode      string    `json:"mode"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MarshalState encodes the wire representation of a sensor's state.
// Shared by the MQTT sink and the WebSocket broadcaster so both
// surfaces emit identical payloads.
func MarshalState(s *TwilightSensor) []byte {
	b, err := json.Marshal(statePayload{
		ID:        s.ID,
		Slug:      s.Slug,
		Mode:      string(s.Mode),
		Active:    s.Active,
		UpdatedAt: s.StateUpdatedAt,
	})
	if err != nil {
		return []byte("{}")
	}
	return b
}

// Publisher is the slice of the MQTT client the sink needs.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
}

// MQTTSink publishes state transitions as retained messages so new
// subscribers immediately see the current state.
type MQTTSink struct {
	pub    Publisher
	logger Logger
}

// NewMQTTSink creates a sink publishing to sundial/state/sensor/{slug}.
// Logger may be nil.
func NewMQTTSink(pub Publisher, logger Logger) *MQTTSink {
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTTSink{pub: pub, logger: logger}
}

// SensorStateChanged publishes the sensor's state. Publish failures are
// logged, not propagated; the broker's retained message catches up on
// reconnect via the next transition.
func (m *MQTTSink) SensorStateChanged(s *TwilightSensor) {
	topic := mqtt.Topics{}.SensorState(s.Slug)
	if err := m.pub.PublishRetained(topic, MarshalState(s)); err != nil {
		m.logger.Warn("publishing sensor state failed",
			"sensor", s.Slug,
			"error", err,
		)
	}
}

// HistoryWriter is the slice of the InfluxDB client the sink needs.
type HistoryWriter interface {
	WriteSensorState(slug string, mode string, active bool, at time.Time)
}

// HistorySink records state transitions to time-series storage.
// Writes are batched and asynchronous inside the client.
type HistorySink struct {
	writer HistoryWriter
}

// NewHistorySink creates a sink writing transitions to InfluxDB.
func NewHistorySink(writer HistoryWriter) *HistorySink {
	return &HistorySink{writer: writer}
}

// SensorStateChanged records the transition.
func (h *HistorySink) SensorStateChanged(s *TwilightSensor) {
	h.writer.WriteSensorState(s.Slug, string(s.Mode), s.Active, s.StateUpdatedAt)
}
