// Package mqtt provides the MQTT transport for Sundial Core.
//
// It wraps eclipse/paho.mqtt.golang with:
//   - Connection lifecycle (LWT, online/offline status, graceful close)
//   - Automatic reconnection with subscription restoration
//   - Panic-safe message handlers
//   - Topic builders for the sundial/... hierarchy
//
// Topic hierarchy:
//
//	sundial/state/sensor/{slug}   retained sensor state (binary)
//	sundial/event/sensor/{slug}   sensor lifecycle events
//	sundial/position/{source_id}  position updates feeding the tracker
//	sundial/system/status         service online/offline (retained, LWT)
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.Subscribe(mqtt.Topics{}.AllPositionUpdates(), 1, tracker.HandleUpdate)
//	client.PublishRetained(mqtt.Topics{}.SensorState("porch-sunset"), payload)
package mqtt
