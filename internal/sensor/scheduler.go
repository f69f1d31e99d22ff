package sensor

import (
	"errors"
	"sync"
	"time"

	"github.com/nerrad567/sundial-core/internal/position"
	"github.com/nerrad567/sundial-core/internal/solar"
)

// windowDays is the number of calendar days searched for the next
// future event pair. A single day's pair may already be entirely in
// the past relative to now, and near timezone/DST boundaries the next
// event can land on an adjacent day that a single-day lookup would
// miss. Three days covers both cases with margin.
const windowDays = 3

// StateListener receives the sensor's binary state after each toggle.
// Invoked outside the scheduler's lock; it may call back into the
// scheduler but must not block for long.
type StateListener func(active bool)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards all log output. Used when no logger is provided.
type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Scheduler arms single-shot timers for the next start/end pair of a
// twilight period and toggles a binary state when they fire.
//
// Lifecycle: created disarmed, armed by Configure, re-armed
// automatically when the end timer fires or the position changes, torn
// down by Release. Configure with invalid input disarms and waits;
// that is a normal quiescent state, not an error.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - A generation counter guards timer callbacks: every reschedule or
//     release invalidates previously armed timers, so a superseded
//     timer that has already fired at the runtime level never mutates
//     state.
type Scheduler struct {
	provider solar.TimeProvider
	clock    Clock
	logger   Logger
	onState  StateListener

	mu         sync.Mutex
	gen        uint64
	configured bool
	source     position.Source
	mode       solar.Mode

	active     bool
	startTimer Timer
	endTimer   Timer
	nextStart  time.Time
	nextEnd    time.Time
	posSub     position.Handle
}

// NewScheduler creates a disarmed scheduler.
//
// Parameters:
//   - provider: Solar event computation (required)
//   - clock: Time source; nil uses the system clock
//   - logger: May be nil
//   - onState: Receives state toggles; may be nil
func NewScheduler(provider solar.TimeProvider, clock Clock, logger Logger, onState StateListener) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Scheduler{
		provider: provider,
		clock:    clock,
		logger:   logger,
		onState:  onState,
	}
}

// Configure stores the position source and mode, then reschedules.
//
// If source is nil or mode is invalid the scheduler disarms and waits
// for a valid configuration. A valid reconfiguration resets the active
// state to false before re-arming.
func (s *Scheduler) Configure(source position.Source, mode solar.Mode) {
	s.mu.Lock()
	if source == nil || !mode.Valid() {
		s.gen++
		s.disarmLocked()
		s.configured = false
		s.source = nil
		s.mu.Unlock()
		s.logger.Info("scheduler configuration incomplete, disarmed",
			"mode", string(mode),
		)
		return
	}

	s.source = source
	s.mode = mode
	s.configured = true
	wasActive := s.active
	s.active = false
	notify := s.onState
	s.rescheduleLocked()
	s.mu.Unlock()

	if wasActive && notify != nil {
		notify(false)
	}
}

// Reschedule performs a full disarm-and-rearm cycle.
//
// Idempotent: with unchanged inputs, repeated calls arm the same
// instants. Invoked automatically on position changes and when the end
// timer fires; exposed for external triggers (e.g. clock corrections).
func (s *Scheduler) Reschedule() {
	s.mu.Lock()
	s.rescheduleLocked()
	s.mu.Unlock()
}

// rescheduleLocked is the central algorithm. Caller holds s.mu.
//
//  1. Bump the generation and disarm everything.
//  2. Subscribe to position changes (any change triggers Reschedule).
//  3. Walk a 3-day window from the most recent local midnight and arm
//     timers against the first day with a future instant.
func (s *Scheduler) rescheduleLocked() {
	s.gen++
	s.disarmLocked()
	if !s.configured {
		return
	}
	gen := s.gen

	s.posSub = s.source.Subscribe(func(position.Position) {
		s.Reschedule()
	})

	pos := s.source.Current()
	now := s.clock.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for day := 0; day < windowDays; day++ {
		date := midnight.AddDate(0, 0, day)
		events, err := s.provider.EventsForDay(date, pos.Latitude, pos.Longitude, s.mode)
		if err != nil {
			if errors.Is(err, solar.ErrNoEvent) {
				// Polar day/night: this day has no pair, try the next.
				continue
			}
			// Invalid position or mode is fatal to this reschedule;
			// stay disarmed until reconfigured or the position changes.
			s.logger.Error("solar event computation failed",
				"mode", string(s.mode),
				"latitude", pos.Latitude,
				"longitude", pos.Longitude,
				"error", err,
			)
			return
		}

		if s.armLocked(gen, now, events) {
			s.logger.Info("scheduler armed",
				"mode", string(s.mode),
				"start", s.nextStart,
				"end", s.nextEnd,
			)
			return
		}
	}

	s.logger.Warn("scheduler disarmed until next trigger",
		"mode", string(s.mode),
		"latitude", pos.Latitude,
		"longitude", pos.Longitude,
		"error", ErrNoFutureEvent,
	)
}

// armLocked arms timers for each instant of the pair that is strictly
// in the future. Reports whether at least one timer was armed, which
// is the window walk's stopping condition. Caller holds s.mu.
func (s *Scheduler) armLocked(gen uint64, now time.Time, events solar.DayEvents) bool {
	armed := false

	if events.Start.After(now) {
		s.nextStart = events.Start
		s.startTimer = s.clock.AfterFunc(events.Start.Sub(now), func() {
			s.startFired(gen)
		})
		armed = true
	}
	if events.End.After(now) {
		s.nextEnd = events.End
		s.endTimer = s.clock.AfterFunc(events.End.Sub(now), func() {
			s.endFired(gen)
		})
		armed = true
	}

	return armed
}

// startFired handles the start timer: state goes active.
// Does not reschedule; the active window runs undisturbed until the
// end timer fires.
func (s *Scheduler) startFired(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.startTimer = nil
	s.nextStart = time.Time{}
	s.active = true
	notify := s.onState
	s.mu.Unlock()

	if notify != nil {
		notify(true)
	}
}

// endFired handles the end timer: state goes inactive and the next
// cycle is computed. This is the sole steady-state re-arm path.
func (s *Scheduler) endFired(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.endTimer = nil
	s.nextEnd = time.Time{}
	s.active = false
	notify := s.onState
	s.rescheduleLocked()
	s.mu.Unlock()

	if notify != nil {
		notify(false)
	}
}

// Release disarms all timers and subscriptions and returns the
// scheduler to the unconfigured state. Idempotent; safe to call
// before Configure.
func (s *Scheduler) Release() {
	s.mu.Lock()
	s.gen++
	s.disarmLocked()
	s.configured = false
	s.source = nil
	wasActive := s.active
	s.active = false
	notify := s.onState
	s.mu.Unlock()

	if wasActive && notify != nil {
		notify(false)
	}
}

// disarmLocked cancels timers and the position subscription in one
// step so no dangling handles survive a reschedule. Idempotent; caller
// holds s.mu.
func (s *Scheduler) disarmLocked() {
	if s.startTimer != nil {
		s.startTimer.Stop()
		s.startTimer = nil
	}
	if s.endTimer != nil {
		s.endTimer.Stop()
		s.endTimer = nil
	}
	s.nextStart = time.Time{}
	s.nextEnd = time.Time{}
	if s.posSub != nil {
		s.posSub.Cancel()
		s.posSub = nil
	}
}

// Active returns the sensor's current binary state.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Status returns a snapshot of the scheduler's armed timers and state.
func (s *Scheduler) Status() ScheduleStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := ScheduleStatus{Active: s.active}
	if s.startTimer != nil {
		start := s.nextStart
		status.NextStart = &start
		status.Armed = true
	}
	if s.endTimer != nil {
		end := s.nextEnd
		status.NextEnd = &end
		status.Armed = true
	}
	return status
}
