// Package engine runs a prize draw: a participant pool, a prize registry, a countdown
// scheduler, the no-replacement allocation and the ledger of its result.
package engine

import (
	"time"

	"prizedraw/internal/models"
)

// DefaultCountdown is the number of ticks between arming and the draw.
const DefaultCountdown = 10

// Observer is notified after every state transition.
type Observer func(from, to models.DrawState)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithCountdown sets the number of ticks a countdown lasts. Values below 1 are raised to 1.
func WithCountdown(ticks int) Option {
	return func(s *Scheduler) {
		s.countdown = max(ticks, 1)
	}
}

// WithObserver registers fn to be called after each transition.
func WithObserver(fn Observer) Option {
	return func(s *Scheduler) {
		s.observers = append(s.observers, fn)
	}
}

// WithClock overrides the time source used to stamp results.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// Scheduler drives a draw through idle, armed, counting down and completed.
//
// The pool and registry may only change while idle. Arming freezes them and takes the
// snapshots the allocation will use. The allocation runs exactly once, on the tick that
// brings the countdown to zero. Scheduler is not safe for concurrent use.
type Scheduler struct {
	pool     *Pool
	registry *Registry
	ledger   *Ledger
	rng      RandomSource

	countdown int
	now       func() time.Time
	observers []Observer

	state        models.DrawState
	poolSnap     []models.Participant
	registrySnap []models.Prize
}

// NewScheduler creates an idle scheduler over the given pool, registry and ledger.
func NewScheduler(pool *Pool, registry *Registry, ledger *Ledger, rng RandomSource, opts ...Option) *Scheduler {
	s := &Scheduler{
		pool:      pool,
		registry:  registry,
		ledger:    ledger,
		rng:       rng,
		countdown: DefaultCountdown,
		now:       time.Now,
		state:     models.DrawState{Phase: models.PhaseIdle},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current draw state.
func (s *Scheduler) State() models.DrawState {
	return s.state
}

// Countdown returns the configured countdown length in ticks.
func (s *Scheduler) Countdown() int {
	return s.countdown
}

// Arm starts a countdown. It reports false and does nothing unless the scheduler is idle.
func (s *Scheduler) Arm() bool {
	if s.state.Phase != models.PhaseIdle {
		return false
	}
	s.setFrozen(true)
	s.poolSnap = s.pool.Snapshot()
	s.registrySnap = s.registry.List()
	s.transition(models.DrawState{Phase: models.PhaseArmed, Remaining: s.countdown})
	return true
}

// Tick advances the countdown by one. When it reaches zero the draw runs and the
// scheduler completes. Ticks while idle or completed are ignored and report false.
func (s *Scheduler) Tick() bool {
	if s.state.Phase != models.PhaseArmed && s.state.Phase != models.PhaseCountingDown {
		return false
	}
	remaining := max(s.state.Remaining-1, 0)
	s.transition(models.DrawState{Phase: models.PhaseCountingDown, Remaining: remaining})
	if remaining == 0 {
		s.complete()
	}
	return true
}

// Cancel abandons an armed or running countdown and returns to idle.
// The pool, registry and ledger are left as they were. Outside a countdown it reports false.
func (s *Scheduler) Cancel() bool {
	if s.state.Phase != models.PhaseArmed && s.state.Phase != models.PhaseCountingDown {
		return false
	}
	s.dropSnapshots()
	s.setFrozen(false)
	s.transition(models.DrawState{Phase: models.PhaseIdle})
	return true
}

// Reset clears the pool, registry and ledger and forces the scheduler back to idle.
func (s *Scheduler) Reset() {
	s.dropSnapshots()
	s.setFrozen(false)
	s.pool.clear()
	s.registry.clear()
	s.ledger.Clear()
	if s.state.Phase != models.PhaseIdle {
		s.transition(models.DrawState{Phase: models.PhaseIdle})
	}
}

func (s *Scheduler) complete() {
	winners := Allocate(s.poolSnap, s.registrySnap, s.rng)
	s.ledger.Set(Result{
		Winners: winners,
		Fills:   Fills(s.registrySnap, winners),
		DrawnAt: s.now(),
	})
	s.dropSnapshots()
	s.transition(models.DrawState{Phase: models.PhaseCompleted})
}

func (s *Scheduler) transition(to models.DrawState) {
	from := s.state
	s.state = to
	for _, fn := range s.observers {
		fn(from, to)
	}
}

func (s *Scheduler) setFrozen(frozen bool) {
	s.pool.frozen = frozen
	s.registry.frozen = frozen
}

func (s *Scheduler) dropSnapshots() {
	s.poolSnap = nil
	s.registrySnap = nil
}
