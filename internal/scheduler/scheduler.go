// Package scheduler owns the recurring background-refresh timer as an
// explicit state machine, replacing ad-hoc timer chains with named
// states and transitions.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the scheduler's lifecycle phase.
type State int

const (
	// Idle: no timers armed. Initial state, and the state after teardown.
	Idle State = iota
	// Armed: a single one-shot delay is pending, targeting the moment
	// the existing cache expires (or one full interval after a cold
	// start).
	Armed
	// Periodic: a repeating ticker fires at fixed interval spacing.
	Periodic
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Periodic:
		return "periodic"
	default:
		return "idle"
	}
}

// Scheduler fires a callback on a schedule: once after an initial
// delay, then repeatedly at a fixed interval. The Armed -> Periodic
// transition happens when the one-shot fires, regardless of what the
// callback does, so a failed refresh never stalls the schedule.
type Scheduler struct {
	clock    Clock
	interval time.Duration
	fire     func()
	logger   *logrus.Entry

	mu      sync.Mutex
	state   State
	started bool
	resetCh chan struct{}
	done    chan struct{}
}

// New creates an idle scheduler. fire is invoked from the scheduler's
// goroutine and must not block.
func New(clock Clock, interval time.Duration, fire func(), logger *logrus.Entry) *Scheduler {
	return &Scheduler{
		clock:    clock,
		interval: interval,
		fire:     fire,
		logger:   logger,
		resetCh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start transitions Idle -> Armed with the given initial delay and runs
// the schedule until ctx is cancelled. Start may be called once.
func (s *Scheduler) Start(ctx context.Context, initialDelay time.Duration) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.state = Armed
	s.mu.Unlock()

	s.logger.Debugf("scheduler armed, first refresh in %v, interval %v", initialDelay, s.interval)
	go s.run(ctx, initialDelay)
}

// Reset tears down any pending one-shot or ticker and re-enters
// Periodic keyed off now, so the next automatic refresh is one full
// interval away. Called after a manual refresh resets the clock.
func (s *Scheduler) Reset() {
	select {
	case s.resetCh <- struct{}{}:
	default:
		// A reset is already pending, collapsing the two is fine.
	}
}

// State returns the current lifecycle phase.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the scheduler has fully torn down.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Scheduler) run(ctx context.Context, initialDelay time.Duration) {
	oneShot := s.clock.After(initialDelay)
	var ticker Ticker

	tickCh := func() <-chan time.Time {
		if ticker == nil {
			return nil
		}
		return ticker.C()
	}

	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
		s.setState(Idle)
		close(s.done)
		s.logger.Debug("scheduler stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-oneShot:
			oneShot = nil
			ticker = s.clock.NewTicker(s.interval)
			s.setState(Periodic)
			s.logger.Debug("initial delay elapsed, entering periodic refresh")
			s.fire()
		case <-tickCh():
			s.logger.Debug("periodic refresh tick")
			s.fire()
		case <-s.resetCh:
			oneShot = nil
			if ticker != nil {
				ticker.Stop()
			}
			ticker = s.clock.NewTicker(s.interval)
			s.setState(Periodic)
			s.logger.Debug("schedule reset, next refresh one full interval away")
		}
	}
}
