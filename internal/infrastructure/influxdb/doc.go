// Package influxdb provides InfluxDB connectivity for Sundial Core.
//
// It wraps the official influxdb-client-go v2 library with Sundial-specific
// patterns for connection management, state recording, and health monitoring.
//
// # Purpose
//
// This package handles time-series storage for:
//   - Twilight sensor state transitions (active/inactive)
//   - Computed solar event instants per arming cycle
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "sundial",
//	    Bucket: "events",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteSensorState("porch-sunset", "sunset", true, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via a
// callback. Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size,
// flush_interval). Sensor transitions are low frequency, so batching mostly
// matters during catch-up after reconnect.
package influxdb
