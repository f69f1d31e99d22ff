package sensor

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/sundial-core/internal/position"
	"github.com/nerrad567/sundial-core/internal/solar"
)

// fakeClock is a manually advanced Clock. Advancing fires due timers in
// chronological order, outside the clock's lock, so callbacks may arm
// new timers (the end-timer reschedule path does exactly that).
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	when    time.Time
	fn      func()
	fired   bool
	stopped bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, when: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward, firing due timers in order. Timers
// armed by callbacks within the window also fire.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			break
		}
		if next.when.After(c.now) {
			c.now = next.when
		}
		next.fired = true
		fn := next.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// fakeProvider serves event pairs from a fixed table keyed by date and
// mode. Days absent from the table behave like polar days.
type fakeProvider struct {
	mu     sync.Mutex
	events map[string]solar.DayEvents
	err    error
	calls  int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{events: make(map[string]solar.DayEvents)}
}

func (p *fakeProvider) key(date time.Time, mode solar.Mode) string {
	return fmt.Sprintf("%s/%s", date.Format("2006-01-02"), mode)
}

func (p *fakeProvider) set(date time.Time, mode solar.Mode, ev solar.DayEvents) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[p.key(date, mode)] = ev
}

func (p *fakeProvider) EventsForDay(date time.Time, lat, lon float64, mode solar.Mode) (solar.DayEvents, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return solar.DayEvents{}, p.err
	}
	ev, ok := p.events[p.key(date, mode)]
	if !ok {
		return solar.DayEvents{}, solar.ErrNoEvent
	}
	return ev, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// recorder captures state transitions in order.
type recorder struct {
	mu     sync.Mutex
	states []bool
}

func (r *recorder) listen(active bool) {
	r.mu.Lock()
	r.states = append(r.states, active)
	r.mu.Unlock()
}

func (r *recorder) get() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.states...)
}

// at builds an instant on the base day plus an offset of days.
func at(day int, hour, minute int) time.Time {
	base := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func testTracker() *position.Tracker {
	return position.NewTracker("test", position.Position{Latitude: 47.6, Longitude: -122.3})
}

func TestScheduler_ArmsFirstFuturePair(t *testing.T) {
	clock := newFakeClock(at(0, 3, 0))
	provider := newFakeProvider()
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 5, 30), End: at(0, 5, 35)})

	sched := NewScheduler(provider, clock, nil, nil)
	sched.Configure(testTracker(), solar.ModeSunrise)

	status := sched.Status()
	if !status.Armed {
		t.Fatal("scheduler not armed")
	}
	if status.NextStart == nil || !status.NextStart.Equal(at(0, 5, 30)) {
		t.Errorf("NextStart = %v, want %v", status.NextStart, at(0, 5, 30))
	}
	if status.NextEnd == nil || !status.NextEnd.Equal(at(0, 5, 35)) {
		t.Errorf("NextEnd = %v, want %v", status.NextEnd, at(0, 5, 35))
	}
	if status.Active {
		t.Error("Active = true before start timer fired")
	}
}

func TestScheduler_NeverArmsPastInstants(t *testing.T) {
	// Mid-period: start elapsed, only the end instant is armed.
	clock := newFakeClock(at(0, 5, 32))
	provider := newFakeProvider()
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 5, 30), End: at(0, 5, 35)})

	sched := NewScheduler(provider, clock, nil, nil)
	sched.Configure(testTracker(), solar.ModeSunrise)

	status := sched.Status()
	if status.NextStart != nil {
		t.Errorf("NextStart = %v, want nil for elapsed instant", status.NextStart)
	}
	if status.NextEnd == nil || !status.NextEnd.Equal(at(0, 5, 35)) {
		t.Errorf("NextEnd = %v, want %v", status.NextEnd, at(0, 5, 35))
	}
}

func TestScheduler_StrictFutureTieBreak(t *testing.T) {
	// now exactly equals the start instant: strict > excludes it.
	clock := newFakeClock(at(0, 5, 30))
	provider := newFakeProvider()
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 5, 30), End: at(0, 5, 35)})

	sched := NewScheduler(provider, clock, nil, nil)
	sched.Configure(testTracker(), solar.ModeSunrise)

	status := sched.Status()
	if status.NextStart != nil {
		t.Errorf("NextStart = %v, want nil when start == now", status.NextStart)
	}
	if status.NextEnd == nil {
		t.Error("NextEnd = nil, want end instant armed")
	}
}

func TestScheduler_RescheduleIdempotent(t *testing.T) {
	clock := newFakeClock(at(0, 3, 0))
	provider := newFakeProvider()
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 5, 30), End: at(0, 5, 35)})

	sched := NewScheduler(provider, clock, nil, nil)
	sched.Configure(testTracker(), solar.ModeSunrise)

	first := sched.Status()
	sched.Reschedule()
	second := sched.Status()

	if !first.NextStart.Equal(*second.NextStart) || !first.NextEnd.Equal(*second.NextEnd) {
		t.Errorf("repeated Reschedule() armed different instants: %+v vs %+v", first, second)
	}
}

func TestScheduler_StateToggleOrdering(t *testing.T) {
	clock := newFakeClock(at(0, 3, 0))
	provider := newFakeProvider()
	provider.set(at(0, 0, 0), solar.ModeSunset, solar.DayEvents{Start: at(0, 20, 30), End: at(0, 20, 50)})
	provider.set(at(1, 0, 0), solar.ModeSunset, solar.DayEvents{Start: at(1, 20, 31), End: at(1, 20, 51)})

	rec := &recorder{}
	sched := NewScheduler(provider, clock, nil, rec.listen)
	sched.Configure(testTracker(), solar.ModeSunset)

	clock.Advance(18 * time.Hour) // past 20:30 and 20:50

	states := rec.get()
	if len(states) != 2 || !states[0] || states[1] {
		t.Fatalf("transitions = %v, want [true false]", states)
	}
	if sched.Active() {
		t.Error("Active = true after end timer fired")
	}

	// End firing re-armed the next cycle automatically.
	status := sched.Status()
	if !status.Armed {
		t.Fatal("scheduler not re-armed after end timer")
	}
	if status.NextStart == nil || !status.NextStart.Equal(at(1, 20, 31)) {
		t.Errorf("NextStart = %v, want next day's start", status.NextStart)
	}
}

func TestScheduler_ContinuousCycles(t *testing.T) {
	clock := newFakeClock(at(0, 3, 0))
	provider := newFakeProvider()
	for day := 0; day < 5; day++ {
		provider.set(at(day, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(day, 5, 30), End: at(day, 5, 35)})
	}

	rec := &recorder{}
	sched := NewScheduler(provider, clock, nil, rec.listen)
	sched.Configure(testTracker(), solar.ModeSunrise)

	clock.Advance(72 * time.Hour) // three full cycles

	states := rec.get()
	if len(states) != 6 {
		t.Fatalf("transitions = %v, want 3 true/false pairs", states)
	}
	for i, s := range states {
		want := i%2 == 0
		if s != want {
			t.Errorf("transition %d = %v, want %v (no skipped starts, no repeats)", i, s, want)
		}
	}
}

func TestScheduler_WindowFallback(t *testing.T) {
	// Day 0 entirely elapsed, day 1 polar (absent), day 2 has a pair.
	clock := newFakeClock(at(0, 23, 0))
	provider := newFakeProvider()
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 5, 30), End: at(0, 5, 35)})
	provider.set(at(2, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(2, 5, 32), End: at(2, 5, 37)})

	sched := NewScheduler(provider, clock, nil, nil)
	sched.Configure(testTracker(), solar.ModeSunrise)

	status := sched.Status()
	if !status.Armed {
		t.Fatal("scheduler not armed despite a future pair in the window")
	}
	if status.NextStart == nil || !status.NextStart.Equal(at(2, 5, 32)) {
		t.Errorf("NextStart = %v, want day 2 start", status.NextStart)
	}
}

func TestScheduler_TomorrowAfterElapsedToday(t *testing.T) {
	// 23:00 local, today's pair fully elapsed: must select tomorrow's.
	clock := newFakeClock(at(0, 23, 0))
	provider := newFakeProvider()
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 5, 30), End: at(0, 5, 35)})
	provider.set(at(1, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(1, 5, 31), End: at(1, 5, 36)})

	sched := NewScheduler(provider, clock, nil, nil)
	sched.Configure(testTracker(), solar.ModeSunrise)

	status := sched.Status()
	if status.NextStart == nil || !status.NextStart.Equal(at(1, 5, 31)) {
		t.Errorf("NextStart = %v, want tomorrow's start", status.NextStart)
	}
	if status.NextEnd == nil || !status.NextEnd.Equal(at(1, 5, 36)) {
		t.Errorf("NextEnd = %v, want tomorrow's end", status.NextEnd)
	}
}

func TestScheduler_WindowExhausted(t *testing.T) {
	clock := newFakeClock(at(0, 12, 0))
	provider := newFakeProvider() // every day polar

	rec := &recorder{}
	sched := NewScheduler(provider, clock, nil, rec.listen)
	sched.Configure(testTracker(), solar.ModeSunrise)

	status := sched.Status()
	if status.Armed {
		t.Error("scheduler armed with no future events available")
	}

	clock.Advance(96 * time.Hour)
	if len(rec.get()) != 0 {
		t.Errorf("transitions = %v, want none while disarmed", rec.get())
	}
}

func TestScheduler_ReleaseDisarmsCompletely(t *testing.T) {
	clock := newFakeClock(at(0, 3, 0))
	provider := newFakeProvider()
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 5, 30), End: at(0, 5, 35)})

	rec := &recorder{}
	sched := NewScheduler(provider, clock, nil, rec.listen)
	sched.Configure(testTracker(), solar.ModeSunrise)
	sched.Release()

	clock.Advance(24 * time.Hour)

	if len(rec.get()) != 0 {
		t.Errorf("transitions = %v after Release(), want none", rec.get())
	}
	if status := sched.Status(); status.Armed {
		t.Error("Status().Armed = true after Release()")
	}
}

func TestScheduler_ReleaseIdempotent(t *testing.T) {
	sched := NewScheduler(newFakeProvider(), newFakeClock(at(0, 0, 0)), nil, nil)

	// Safe before Configure and repeatedly.
	sched.Release()
	sched.Release()

	sched.Configure(testTracker(), solar.ModeSunrise)
	sched.Release()
	sched.Release()
}

func TestScheduler_ReleaseWhileActiveNotifiesInactive(t *testing.T) {
	clock := newFakeClock(at(0, 3, 0))
	provider := newFakeProvider()
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 5, 30), End: at(0, 7, 0)})

	rec := &recorder{}
	sched := NewScheduler(provider, clock, nil, rec.listen)
	sched.Configure(testTracker(), solar.ModeSunrise)

	clock.Advance(3 * time.Hour) // past start, before end
	if !sched.Active() {
		t.Fatal("Active = false, want true mid-period")
	}

	sched.Release()
	states := rec.get()
	if len(states) != 2 || states[1] {
		t.Errorf("transitions = %v, want [true false]", states)
	}
}

func TestScheduler_InvalidConfigurationQuiesces(t *testing.T) {
	clock := newFakeClock(at(0, 3, 0))
	provider := newFakeProvider()
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 5, 30), End: at(0, 5, 35)})

	sched := NewScheduler(provider, clock, nil, nil)

	sched.Configure(nil, solar.ModeSunrise)
	if sched.Status().Armed {
		t.Error("armed with nil position source")
	}

	sched.Configure(testTracker(), solar.Mode("noon"))
	if sched.Status().Armed {
		t.Error("armed with invalid mode")
	}

	// Valid configuration recovers from the quiescent state.
	sched.Configure(testTracker(), solar.ModeSunrise)
	if !sched.Status().Armed {
		t.Error("not armed after valid configuration")
	}
}

func TestScheduler_ProviderErrorDisarms(t *testing.T) {
	clock := newFakeClock(at(0, 3, 0))
	provider := newFakeProvider()
	provider.err = solar.ErrInvalidCoordinates

	rec := &recorder{}
	sched := NewScheduler(provider, clock, nil, rec.listen)
	sched.Configure(testTracker(), solar.ModeSunrise)

	if sched.Status().Armed {
		t.Error("armed despite provider failure")
	}
	clock.Advance(24 * time.Hour)
	if len(rec.get()) != 0 {
		t.Errorf("transitions = %v, want none", rec.get())
	}
}

func TestScheduler_PositionChangeTriggersReschedule(t *testing.T) {
	clock := newFakeClock(at(0, 3, 0))
	provider := newFakeProvider()
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 5, 30), End: at(0, 5, 35)})

	tracker := testTracker()
	sched := NewScheduler(provider, clock, nil, nil)
	sched.Configure(tracker, solar.ModeSunrise)

	before := provider.callCount()
	// Shift the event table, then move: the reschedule must pick up
	// the new instants.
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 6, 0), End: at(0, 6, 5)})
	if err := tracker.SetPosition(position.Position{Latitude: 35.0, Longitude: -100.0}); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}

	if provider.callCount() <= before {
		t.Error("provider not re-queried after position change")
	}
	status := sched.Status()
	if status.NextStart == nil || !status.NextStart.Equal(at(0, 6, 0)) {
		t.Errorf("NextStart = %v, want re-armed %v", status.NextStart, at(0, 6, 0))
	}
}

func TestScheduler_SupersededTimersNeverFire(t *testing.T) {
	clock := newFakeClock(at(0, 3, 0))
	provider := newFakeProvider()
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 5, 30), End: at(0, 5, 35)})

	rec := &recorder{}
	tracker := testTracker()
	sched := NewScheduler(provider, clock, nil, rec.listen)
	sched.Configure(tracker, solar.ModeSunrise)

	// Supersede the first schedule with a later pair.
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 9, 0), End: at(0, 9, 10)})
	sched.Reschedule()

	// Advancing past the original instants must not toggle state.
	clock.Advance(3 * time.Hour) // 06:00, past the superseded 05:30/05:35
	if len(rec.get()) != 0 {
		t.Errorf("transitions = %v from superseded timers, want none", rec.get())
	}

	// The replacement pair still fires.
	clock.Advance(4 * time.Hour) // 10:00, past 09:00/09:10
	states := rec.get()
	if len(states) != 2 || !states[0] || states[1] {
		t.Errorf("transitions = %v, want [true false]", states)
	}
}

func TestScheduler_ReconfigureResetsActive(t *testing.T) {
	clock := newFakeClock(at(0, 3, 0))
	provider := newFakeProvider()
	provider.set(at(0, 0, 0), solar.ModeSunrise, solar.DayEvents{Start: at(0, 5, 30), End: at(0, 7, 0)})
	provider.set(at(0, 0, 0), solar.ModeSunset, solar.DayEvents{Start: at(0, 20, 30), End: at(0, 20, 50)})

	rec := &recorder{}
	tracker := testTracker()
	sched := NewScheduler(provider, clock, nil, rec.listen)
	sched.Configure(tracker, solar.ModeSunrise)

	clock.Advance(3 * time.Hour) // start fired, active
	if !sched.Active() {
		t.Fatal("Active = false mid-period")
	}

	sched.Configure(tracker, solar.ModeSunset)
	if sched.Active() {
		t.Error("Active = true after reconfiguration")
	}

	status := sched.Status()
	if status.NextStart == nil || !status.NextStart.Equal(at(0, 20, 30)) {
		t.Errorf("NextStart = %v, want sunset start", status.NextStart)
	}
}
