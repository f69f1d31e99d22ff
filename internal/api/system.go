package api

import (
	"net/http"
	"time"
)

// handleSystemStatus reports per-component health alongside basic runtime
// figures. Components that are not configured report "disabled".
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	components := map[string]string{
		"database": "disabled",
		"mqtt":     "disabled",
		"influxdb": "disabled",
	}
	if s.db != nil {
		components["database"] = componentStatus(s.db.HealthCheck(ctx))
	}
	if s.mqtt != nil {
		components["mqtt"] = componentStatus(s.mqtt.HealthCheck(ctx))
	}
	if s.influx != nil {
		components["influxdb"] = componentStatus(s.influx.HealthCheck(ctx))
	}

	sensorCount := 0
	if sensors, err := s.sensors.List(ctx); err == nil {
		sensorCount = len(sensors)
	}

	wsClients := 0
	if s.hub != nil {
		wsClients = s.hub.ClientCount()
	}

	uptime := int64(0)
	if !s.startedAt.IsZero() {
		uptime = int64(time.Since(s.startedAt).Seconds())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"version":           s.version,
		"uptime_seconds":    uptime,
		"components":        components,
		"sensors":           sensorCount,
		"websocket_clients": wsClients,
	})
}

// componentStatus renders a health check result for the status payload.
func componentStatus(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
