// Package logging provides structured logging for Sundial Core.
//
// It wraps the standard library's log/slog with configuration-driven
// format and level selection, plus default service/version attributes
// on every record.
//
// Usage:
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("sensor armed", "sensor_id", id, "mode", mode)
//
// Components that hold a logger long-term should derive a child with
// a component attribute:
//
//	schedLog := log.With("component", "scheduler")
package logging
