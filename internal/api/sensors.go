package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/sundial-core/internal/sensor"
	"github.com/nerrad567/sundial-core/internal/solar"
)

// createSensorRequest is the request body for creating a twilight sensor.
type createSensorRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	PositionSource string `json:"position_source"`
	Mode           string `json:"mode"`
	Enabled        *bool  `json:"enabled"`
}

// updateSensorRequest is the request body for updating a twilight sensor.
// All fields are optional; omitted fields keep their current value.
type updateSensorRequest struct {
	Name           *string `json:"name"`
	Slug           *string `json:"slug"`
	PositionSource *string `json:"position_source"`
	Mode           *string `json:"mode"`
	Enabled        *bool   `json:"enabled"`
}

// handleListSensors returns all twilight sensors.
func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	sensors, err := s.sensors.List(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list sensors")
		return
	}
	if sensors == nil {
		sensors = []sensor.TwilightSensor{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sensors": sensors, "count": len(sensors)})
}

// handleCreateSensor creates a new twilight sensor. Enabled sensors are
// armed immediately.
func (s *Server) handleCreateSensor(w http.ResponseWriter, r *http.Request) {
	var req createSensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	// Sensors default to enabled unless the request says otherwise.
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	sen := &sensor.TwilightSensor{
		ID:             req.ID,
		Name:           req.Name,
		Slug:           req.Slug,
		PositionSource: req.PositionSource,
		Mode:           solar.Mode(req.Mode),
		Enabled:        enabled,
	}

	if err := s.sensors.Create(r.Context(), sen); err != nil {
		s.writeSensorError(w, err, "failed to create sensor")
		return
	}

	writeJSON(w, http.StatusCreated, sen)
}

// handleGetSensor returns a single sensor by ID.
func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sen, err := s.sensors.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sensor.ErrNotFound) {
			writeNotFound(w, "sensor not found")
			return
		}
		writeInternalError(w, "failed to get sensor")
		return
	}
	writeJSON(w, http.StatusOK, sen)
}

// handleUpdateSensor applies a partial update and rebuilds the sensor's
// schedule.
func (s *Server) handleUpdateSensor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sen, err := s.sensors.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sensor.ErrNotFound) {
			writeNotFound(w, "sensor not found")
			return
		}
		writeInternalError(w, "failed to get sensor")
		return
	}

	var req updateSensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name != nil {
		sen.Name = *req.Name
	}
	if req.Slug != nil {
		sen.Slug = *req.Slug
	}
	if req.PositionSource != nil {
		sen.PositionSource = *req.PositionSource
	}
	if req.Mode != nil {
		sen.Mode = solar.Mode(*req.Mode)
	}
	if req.Enabled != nil {
		sen.Enabled = *req.Enabled
	}

	if err := s.sensors.Update(r.Context(), sen); err != nil {
		s.writeSensorError(w, err, "failed to update sensor")
		return
	}

	writeJSON(w, http.StatusOK, sen)
}

// handleDeleteSensor releases the sensor's schedule and removes it.
func (s *Server) handleDeleteSensor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.sensors.Delete(r.Context(), id); err != nil {
		if errors.Is(err, sensor.ErrNotFound) {
			writeNotFound(w, "sensor not found")
			return
		}
		writeInternalError(w, "failed to delete sensor")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetSensorSchedule returns the live schedule snapshot for a sensor:
// current state, armed timers, and the next start/end instants.
func (s *Server) handleGetSensorSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	status, err := s.sensors.Status(r.Context(), id)
	if err != nil {
		if errors.Is(err, sensor.ErrNotFound) {
			writeNotFound(w, "sensor not found")
			return
		}
		writeInternalError(w, "failed to get sensor schedule")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "schedule": status})
}

// writeSensorError maps sensor service errors to HTTP responses.
func (s *Server) writeSensorError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, sensor.ErrValidation):
		writeValidationError(w, err.Error())
	case errors.Is(err, sensor.ErrExists):
		writeConflict(w, err.Error())
	case errors.Is(err, sensor.ErrNotFound):
		writeNotFound(w, "sensor not found")
	default:
		s.logger.Error(fallback, "error", err)
		writeInternalError(w, fallback)
	}
}
