package position

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nerrad567/sundial-core/internal/infrastructure/mqtt"
)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards all log output. Used when no logger is provided.
type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Hub owns one Tracker per registered position source.
//
// It seeds trackers from the repository at startup, routes MQTT position
// updates to the right tracker, and writes accepted updates back so the
// last known position survives restarts.
type Hub struct {
	repo   Repository
	logger Logger

	mu       sync.RWMutex
	trackers map[string]*Tracker
}

// NewHub creates a hub backed by the given repository.
// Logger may be nil.
func NewHub(repo Repository, logger Logger) *Hub {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Hub{
		repo:     repo,
		logger:   logger,
		trackers: make(map[string]*Tracker),
	}
}

// Load seeds a tracker for every persisted position source.
// Called once at startup before MQTT subscriptions are established.
func (h *Hub) Load(ctx context.Context) error {
	sources, err := h.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading position sources: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, src := range sources {
		h.trackers[src.ID] = NewTracker(src.ID, Position{
			Latitude:  src.Latitude,
			Longitude: src.Longitude,
		})
	}
	return nil
}

// Get returns the tracker for a source ID.
func (h *Hub) Get(sourceID string) (*Tracker, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.trackers[sourceID]
	return t, ok
}

// Add registers a tracker for a newly created source.
// Replaces any existing tracker for the same ID.
func (h *Hub) Add(src *PositionSource) *Tracker {
	t := NewTracker(src.ID, Position{Latitude: src.Latitude, Longitude: src.Longitude})
	h.mu.Lock()
	h.trackers[src.ID] = t
	h.mu.Unlock()
	return t
}

// Remove drops the tracker for a deleted source.
// Existing subscriptions on the tracker simply stop receiving updates.
func (h *Hub) Remove(sourceID string) {
	h.mu.Lock()
	delete(h.trackers, sourceID)
	h.mu.Unlock()
}

// updatePayload is the JSON body expected on sundial/position/{id}.
type updatePayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// HandleUpdate processes an MQTT position update.
//
// Satisfies mqtt.MessageHandler. The topic identifies the source; the
// payload carries the new coordinates:
//
//	{"latitude": 47.6, "longitude": -122.3}
//
// Updates for unknown sources are dropped with a warning; out-of-range
// coordinates are rejected without touching the tracker. Accepted
// updates are persisted best-effort.
func (h *Hub) HandleUpdate(topic string, payload []byte) error {
	sourceID := mqtt.PositionSourceFromTopic(topic)
	if sourceID == "" {
		return fmt.Errorf("%w: topic %q", ErrInvalidUpdate, topic)
	}

	var update updatePayload
	if err := json.Unmarshal(payload, &update); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUpdate, err)
	}
	if update.Latitude == nil || update.Longitude == nil {
		return fmt.Errorf("%w: missing latitude or longitude", ErrInvalidUpdate)
	}

	tracker, ok := h.Get(sourceID)
	if !ok {
		h.logger.Warn("position update for unknown source",
			"source_id", sourceID,
		)
		return fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}

	pos := Position{Latitude: *update.Latitude, Longitude: *update.Longitude}
	if err := tracker.SetPosition(pos); err != nil {
		return fmt.Errorf("position update for %s: %w", sourceID, err)
	}

	// Persist so restarts seed with the last known position.
	if err := h.repo.UpdatePosition(context.Background(), sourceID, pos.Latitude, pos.Longitude); err != nil {
		h.logger.Error("persisting position update failed",
			"source_id", sourceID,
			"error", err,
		)
	}
	return nil
}
