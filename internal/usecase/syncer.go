// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/repo-pulse/internal/cache"
	"github.com/naka-gawa/repo-pulse/internal/domain"
	"github.com/naka-gawa/repo-pulse/internal/gateway"
	"github.com/naka-gawa/repo-pulse/internal/scheduler"
)

// FacadeState is the derived, ephemeral view handed to display code.
// Loading and IsRefreshing are mutually exclusive: once any data has
// been displayed in a session, the view never degrades back to a
// loading skeleton.
type FacadeState struct {
	Snapshot *domain.StatsSnapshot  `json:"snapshot,omitempty"`
	Activity domain.ActivitySummary `json:"activity"`

	Loading      bool   `json:"loading"`
	IsRefreshing bool   `json:"is_refreshing"`
	IsFromCache  bool   `json:"is_from_cache"`
	Error        string `json:"error,omitempty"`

	LastFetchedAt time.Time `json:"last_fetched_at"`
	NextRefreshAt time.Time `json:"next_refresh_at"`
}

// Syncer is the synchronization facade: it merges the persistent cache,
// the live fetcher and the refresh scheduler into one coherent view.
//
// Initialization is two-phase: NewSyncer builds a neutral placeholder
// state and Start performs the cache read and first transition. At most
// one fetch result is ever applied per issuance order; an in-flight
// fetch superseded by a newer one has its outcome discarded entirely.
type Syncer struct {
	fetcher gateway.Fetcher
	store   *cache.Store[domain.StatsSnapshot]
	clock   scheduler.Clock
	sched   *scheduler.Scheduler
	logger  *logrus.Entry

	ttl      time.Duration
	cooldown time.Duration

	mu     sync.Mutex
	state  FacadeState
	runCtx context.Context
	gen    uint64
	cancel context.CancelFunc
}

// NewSyncer creates an idle facade. Nothing is read or fetched until
// Start is called.
func NewSyncer(
	fetcher gateway.Fetcher,
	store *cache.Store[domain.StatsSnapshot],
	clock scheduler.Clock,
	ttl, cooldown time.Duration,
	logger *logrus.Entry,
) *Syncer {
	s := &Syncer{
		fetcher:  fetcher,
		store:    store,
		clock:    clock,
		logger:   logger,
		ttl:      ttl,
		cooldown: cooldown,
		runCtx:   context.Background(),
	}
	s.sched = scheduler.New(clock, ttl, s.onScheduledRefresh, logger)
	return s
}

// Start reads the persistent cache and transitions out of the
// placeholder state. A fresh cache entry is adopted immediately and the
// scheduler is armed at the remaining TTL, so cache age accrued before
// this session (e.g. across a restart) counts against the schedule. A
// stale or absent entry triggers an immediate fetch instead, with the
// scheduler armed at the full TTL.
func (s *Syncer) Start(ctx context.Context) {
	s.mu.Lock()
	s.runCtx = ctx
	now := s.clock.Now()
	initialDelay := s.ttl

	entry, ok := s.store.Read()
	if ok && cache.IsFresh(entry.FetchedTime(), s.ttl, now) {
		snapshot := entry.Data
		fetchedAt := entry.FetchedTime()
		s.state.Snapshot = &snapshot
		s.state.Activity = SummarizeActivity(snapshot.WeeklyActivity)
		s.state.Loading = false
		s.state.IsFromCache = true
		s.state.LastFetchedAt = fetchedAt
		s.state.NextRefreshAt = fetchedAt.Add(s.ttl)
		initialDelay = cache.RemainingTTL(fetchedAt, s.ttl, now)
		s.mu.Unlock()
		s.logger.Debugf("serving cached snapshot, next refresh in %v", initialDelay)
	} else {
		s.state.Loading = true
		s.mu.Unlock()
		s.logger.Debug("no fresh cache entry, fetching immediately")
		s.dispatch()
	}

	s.sched.Start(ctx, initialDelay)
}

// State returns the current facade state. The embedded snapshot is
// immutable, so sharing the pointer with callers is safe.
func (s *Syncer) State() FacadeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ForceRefresh requests a refresh outside the normal schedule. It is a
// no-op while the manual-refresh cooldown is in effect. A granted
// refresh resets the periodic schedule so the next automatic refresh is
// a full TTL away.
func (s *Syncer) ForceRefresh() bool {
	s.mu.Lock()
	allowed := cache.CanForceRefresh(s.state.LastFetchedAt, s.cooldown, s.clock.Now())
	s.mu.Unlock()
	if !allowed {
		s.logger.Debug("manual refresh suppressed by cooldown")
		return false
	}

	s.sched.Reset()
	s.dispatch()
	return true
}

func (s *Syncer) onScheduledRefresh() {
	s.dispatch()
}

// dispatch issues a new fetch, superseding any fetch still in flight.
// The superseded fetch is cancelled at the transport level and its
// eventual outcome, success or failure, is discarded.
func (s *Syncer) dispatch() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(s.runCtx)
	s.cancel = cancel

	if s.state.Snapshot != nil {
		s.state.IsRefreshing = true
	} else {
		s.state.Loading = true
	}
	s.mu.Unlock()

	go s.runFetch(ctx, gen)
}

func (s *Syncer) runFetch(ctx context.Context, gen uint64) {
	snapshot, err := s.fetcher.FetchAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		// Superseded: a newer fetch owns the state now.
		return
	}
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			// Cancellation is an expected outcome, not an error.
			return
		}
		// Keep whatever was displayed before; the next scheduled
		// attempt is the retry.
		s.state.IsRefreshing = false
		s.state.Error = err.Error()
		s.logger.Warnf("refresh failed, keeping previous data: %v", err)
		return
	}

	fetchedAt := time.UnixMilli(s.store.Write(snapshot, s.clock.Now(), ""))
	s.state.Snapshot = &snapshot
	s.state.Activity = SummarizeActivity(snapshot.WeeklyActivity)
	s.state.Loading = false
	s.state.IsRefreshing = false
	s.state.IsFromCache = false
	s.state.Error = ""
	s.state.LastFetchedAt = fetchedAt
	s.state.NextRefreshAt = fetchedAt.Add(s.ttl)
	s.logger.Debugf("snapshot adopted, next refresh at %v", s.state.NextRefreshAt)
}
