package sensor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/sundial-core/internal/position"
	"github.com/nerrad567/sundial-core/internal/solar"
)

// stateWriteTimeout bounds the persistence write on the timer callback path.
const stateWriteTimeout = 5 * time.Second

// Service owns the full sensor lifecycle: persistence, one scheduler
// per enabled sensor, and fan-out of state transitions to sinks.
//
// Thread Safety: all methods are safe for concurrent use.
type Service struct {
	repo     Repository
	hub      *position.Hub
	provider solar.TimeProvider
	clock    Clock
	logger   Logger
	sinks    []StateSink

	mu         sync.Mutex
	schedulers map[string]*Scheduler
}

// NewService creates a sensor service.
//
// Parameters:
//   - repo: Sensor persistence
//   - hub: Position trackers the schedulers subscribe to
//   - provider: Solar event computation
//   - clock: Time source; nil uses the system clock
//   - logger: May be nil
//   - sinks: State transition consumers (MQTT, WebSocket, history)
func NewService(repo Repository, hub *position.Hub, provider solar.TimeProvider, clock Clock, logger Logger, sinks ...StateSink) *Service {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Service{
		repo:       repo,
		hub:        hub,
		provider:   provider,
		clock:      clock,
		logger:     logger,
		sinks:      sinks,
		schedulers: make(map[string]*Scheduler),
	}
}

// Start loads persisted sensors and arms a scheduler for each enabled one.
func (s *Service) Start(ctx context.Context) error {
	sensors, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading sensors: %w", err)
	}

	for i := range sensors {
		sen := &sensors[i]
		if !sen.Enabled {
			continue
		}
		s.startScheduler(sen)
	}

	s.logger.Info("sensor service started", "sensors", len(sensors))
	return nil
}

// Stop releases every scheduler. Armed timers never fire afterwards.
func (s *Service) Stop() {
	s.mu.Lock()
	schedulers := make([]*Scheduler, 0, len(s.schedulers))
	for _, sched := range s.schedulers {
		schedulers = append(schedulers, sched)
	}
	s.schedulers = make(map[string]*Scheduler)
	s.mu.Unlock()

	for _, sched := range schedulers {
		sched.Release()
	}
}

// Create validates and persists a new sensor, arming its scheduler if
// enabled. A missing ID is filled with a generated UUID.
func (s *Service) Create(ctx context.Context, sen *TwilightSensor) error {
	if sen.ID == "" {
		sen.ID = uuid.New().String()
	}
	if err := sen.Validate(); err != nil {
		return err
	}
	if _, ok := s.hub.Get(sen.PositionSource); !ok {
		return fmt.Errorf("%w: unknown position source %q", ErrValidation, sen.PositionSource)
	}

	if err := s.repo.Create(ctx, sen); err != nil {
		return err
	}

	if sen.Enabled {
		s.startScheduler(sen)
	}
	return nil
}

// Update modifies a sensor's configuration and rebuilds its scheduler.
// The binary state resets to inactive; the new schedule re-establishes it.
func (s *Service) Update(ctx context.Context, sen *TwilightSensor) error {
	if err := sen.Validate(); err != nil {
		return err
	}
	if _, ok := s.hub.Get(sen.PositionSource); !ok {
		return fmt.Errorf("%w: unknown position source %q", ErrValidation, sen.PositionSource)
	}

	if err := s.repo.Update(ctx, sen); err != nil {
		return err
	}

	s.stopScheduler(sen.ID)
	if sen.Enabled {
		s.startScheduler(sen)
	}
	return nil
}

// Delete releases the sensor's scheduler and removes it from storage.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.stopScheduler(id)
	return s.repo.Delete(ctx, id)
}

// Get returns a sensor by ID.
func (s *Service) Get(ctx context.Context, id string) (*TwilightSensor, error) {
	return s.repo.Get(ctx, id)
}

// List returns all sensors.
func (s *Service) List(ctx context.Context) ([]TwilightSensor, error) {
	return s.repo.List(ctx)
}

// Status returns the live schedule snapshot for a sensor.
// Disabled sensors report their persisted state with no armed timers.
func (s *Service) Status(ctx context.Context, id string) (ScheduleStatus, error) {
	sen, err := s.repo.Get(ctx, id)
	if err != nil {
		return ScheduleStatus{}, err
	}

	s.mu.Lock()
	sched, ok := s.schedulers[id]
	s.mu.Unlock()
	if !ok {
		return ScheduleStatus{Active: sen.Active}, nil
	}
	return sched.Status(), nil
}

// startScheduler creates and configures a scheduler for the sensor.
// Sensors referencing an unknown position source stay dormant until
// reconfigured.
func (s *Service) startScheduler(sen *TwilightSensor) {
	tracker, ok := s.hub.Get(sen.PositionSource)
	if !ok {
		s.logger.Warn("sensor references unknown position source, not scheduling",
			"sensor", sen.Slug,
			"position_source", sen.PositionSource,
		)
		return
	}

	sched := NewScheduler(s.provider, s.clock, s.logger, s.stateListener(sen.ID))

	s.mu.Lock()
	if old, ok := s.schedulers[sen.ID]; ok {
		old.Release()
	}
	s.schedulers[sen.ID] = sched
	s.mu.Unlock()

	sched.Configure(tracker, sen.Mode)
}

// stopScheduler releases and forgets the sensor's scheduler, if any.
func (s *Service) stopScheduler(id string) {
	s.mu.Lock()
	sched, ok := s.schedulers[id]
	delete(s.schedulers, id)
	s.mu.Unlock()

	if ok {
		sched.Release()
	}
}

// stateListener builds the per-sensor callback that persists and
// fans out state transitions.
func (s *Service) stateListener(id string) StateListener {
	return func(active bool) {
		s.handleStateChange(id, active)
	}
}

// handleStateChange runs on the timer callback path: persist the
// transition, then deliver the updated snapshot to every sink.
func (s *Service) handleStateChange(id string, active bool) {
	ctx, cancel := context.WithTimeout(context.Background(), stateWriteTimeout)
	defer cancel()

	now := s.clock.Now()
	if err := s.repo.UpdateState(ctx, id, active, now); err != nil {
		s.logger.Error("persisting sensor state failed",
			"sensor_id", id,
			"active", active,
			"error", err,
		)
	}

	sen, err := s.repo.Get(ctx, id)
	if err != nil {
		// Deleted mid-flight; nothing to fan out.
		s.logger.Warn("sensor vanished during state change",
			"sensor_id", id,
			"error", err,
		)
		return
	}
	// Reflect the transition even if the persistence write failed.
	sen.Active = active
	sen.StateUpdatedAt = now

	s.logger.Info("sensor state changed",
		"sensor", sen.Slug,
		"mode", string(sen.Mode),
		"active", active,
	)

	for _, sink := range s.sinks {
		sink.SensorStateChanged(sen)
	}
}
