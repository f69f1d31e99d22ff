package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nerrad567/sundial-core/internal/position"
	"github.com/nerrad567/sundial-core/internal/solar"
)

// createPositionRequest is the request body for creating a position source.
type createPositionRequest struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// updatePositionRequest is the request body for updating a position source.
// All fields are optional; omitted fields keep their current value.
type updatePositionRequest struct {
	Name      *string  `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// handleListPositions returns all position sources.
func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	sources, err := s.positions.List(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list position sources")
		return
	}
	if sources == nil {
		sources = []position.PositionSource{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"positions": sources, "count": len(sources)})
}

// handleCreatePosition registers a new position source and starts tracking
// it so sensors can reference it immediately.
func (s *Server) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	var req createPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeBadRequest(w, "latitude and longitude are required")
		return
	}
	if err := solar.ValidateCoordinates(*req.Latitude, *req.Longitude); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	src := &position.PositionSource{
		ID:        req.ID,
		Name:      req.Name,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	}

	if err := s.positions.Create(r.Context(), src); err != nil {
		if errors.Is(err, position.ErrSourceExists) {
			writeConflict(w, "position source already exists")
			return
		}
		s.logger.Error("failed to create position source", "error", err)
		writeInternalError(w, "failed to create position source")
		return
	}

	s.positionHub.Add(src)
	writeJSON(w, http.StatusCreated, src)
}

// handleGetPosition returns a single position source by ID.
func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	src, err := s.positions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, position.ErrSourceNotFound) {
			writeNotFound(w, "position source not found")
			return
		}
		writeInternalError(w, "failed to get position source")
		return
	}
	writeJSON(w, http.StatusOK, src)
}

// handleUpdatePosition applies a partial update. New coordinates propagate
// to the tracker, which reschedules every sensor bound to the source.
func (s *Server) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	src, err := s.positions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, position.ErrSourceNotFound) {
			writeNotFound(w, "position source not found")
			return
		}
		writeInternalError(w, "failed to get position source")
		return
	}

	var req updatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name != nil {
		src.Name = *req.Name
	}
	if req.Latitude != nil {
		src.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		src.Longitude = *req.Longitude
	}
	if err := solar.ValidateCoordinates(src.Latitude, src.Longitude); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if err := s.positions.Update(r.Context(), src); err != nil {
		if errors.Is(err, position.ErrSourceNotFound) {
			writeNotFound(w, "position source not found")
			return
		}
		s.logger.Error("failed to update position source", "error", err)
		writeInternalError(w, "failed to update position source")
		return
	}

	// Keep the live tracker in sync so bound sensors reschedule.
	pos := position.Position{Latitude: src.Latitude, Longitude: src.Longitude}
	if tracker, ok := s.positionHub.Get(id); ok {
		if err := tracker.SetPosition(pos); err != nil {
			s.logger.Warn("tracker rejected updated position", "source_id", id, "error", err)
		}
	} else {
		s.positionHub.Add(src)
	}

	writeJSON(w, http.StatusOK, src)
}

// handleDeletePosition removes a position source. Sources still referenced
// by sensors cannot be deleted.
func (s *Server) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.positions.Delete(r.Context(), id); err != nil {
		if errors.Is(err, position.ErrSourceNotFound) {
			writeNotFound(w, "position source not found")
			return
		}
		if isForeignKeyViolation(err) {
			writeConflict(w, "position source is referenced by sensors")
			return
		}
		s.logger.Error("failed to delete position source", "error", err)
		writeInternalError(w, "failed to delete position source")
		return
	}

	s.positionHub.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// isForeignKeyViolation reports whether err is a SQLite FK constraint failure.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
