package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/weiihann/ecoquest-analytics/internal"
	"github.com/weiihann/ecoquest-analytics/internal/logger"
	"github.com/weiihann/ecoquest-analytics/pkg/analytics"
	"github.com/weiihann/ecoquest-analytics/pkg/client"
	"github.com/weiihann/ecoquest-analytics/pkg/tracker"
)

// State is the poller's view of the world at one instant. A new State value is
// stored on every change; stored values are never modified.
type State struct {
	// Snapshot is the most recent successfully fetched payload, nil before the first success.
	Snapshot *analytics.Snapshot
	// LastUpdated is the time of the most recent success.
	LastUpdated time.Time
	// LastError is the message of the most recent failed poll, cleared on success.
	LastError string
	// Loading is true until the first poll has finished either way.
	Loading bool
	// SecondsAgo is the elapsed-time counter maintained by the tick timer.
	SecondsAgo int64
	Polls      int64
	Failures   int64
}

// Service polls the analytics endpoint and keeps the latest good snapshot
type Service struct {
	client  client.ClientInterface
	tracker *tracker.UpdateTracker
	log     *slog.Logger

	pollInterval   time.Duration
	tickInterval   time.Duration
	requestTimeout time.Duration
	skipOverlap    bool

	// writeMu serialises state replacement; readers only load the pointer.
	writeMu  sync.Mutex
	state    atomic.Pointer[State]
	inFlight atomic.Bool
	fetches  sync.WaitGroup
}

func NewService(c client.ClientInterface, config internal.Config) *Service {
	return newService(c, config, time.Now)
}

func newService(c client.ClientInterface, config internal.Config, now func() time.Time) *Service {
	s := &Service{
		client:         c,
		tracker:        tracker.NewUpdateTracker(now),
		log:            logger.GetLogger("analytics-poller"),
		pollInterval:   time.Duration(config.PollInterval) * time.Second,
		tickInterval:   time.Duration(config.TickInterval) * time.Second,
		requestTimeout: time.Duration(config.APITimeout) * time.Second,
		skipOverlap:    config.PollSkipOverlap,
	}
	s.state.Store(&State{Loading: true})
	return s
}

// Run fetches immediately, then on every poll tick, while a second ticker
// refreshes the elapsed-seconds counter. Both tickers are stopped and
// outstanding fetches awaited before Run returns.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("Starting analytics poller",
		"poll_interval", s.pollInterval,
		"tick_interval", s.tickInterval,
		"skip_overlap", s.skipOverlap)

	pollTicker := time.NewTicker(s.pollInterval)
	defer pollTicker.Stop()

	elapsedTicker := time.NewTicker(s.tickInterval)
	defer elapsedTicker.Stop()

	s.dispatch(ctx)

	for {
		select {
		case <-ctx.Done():
			s.fetches.Wait()
			s.log.Info("Analytics poller stopped")
			return nil
		case <-pollTicker.C:
			s.dispatch(ctx)
		case <-elapsedTicker.C:
			s.tick()
		}
	}
}

// dispatch starts one fetch in the background. Without the overlap guard a slow
// request does not hold back the next tick, so requests may overlap and the
// later completion wins.
func (s *Service) dispatch(ctx context.Context) {
	if s.skipOverlap && !s.inFlight.CompareAndSwap(false, true) {
		s.log.Debug("Previous poll still in flight, skipping tick")
		return
	}

	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		if s.skipOverlap {
			defer s.inFlight.Store(false)
		}
		_ = s.Poll(ctx)
	}()
}

// Poll performs one synchronous fetch and applies its outcome. The returned
// error is the fetch error, if any; prior data is kept on failure.
func (s *Service) Poll(ctx context.Context) error {
	reqCtx := ctx
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	snap, err := s.client.FetchSnapshot(reqCtx)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			// Shutting down; not a poll failure.
			return err
		}
		s.recordFailure(err)
		return err
	}

	s.recordSuccess(snap)
	return nil
}

func (s *Service) recordSuccess(snap *analytics.Snapshot) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev := s.state.Load()
	stamp := s.tracker.MarkUpdated()
	s.state.Store(&State{
		Snapshot:    snap,
		LastUpdated: stamp,
		Polls:       prev.Polls + 1,
		Failures:    prev.Failures,
	})

	s.log.Debug("Analytics snapshot refreshed",
		"collected_total", snap.Recyclables.Overall.CollectedTotal,
		"materials", len(snap.Recyclables.TopCollectedMaterials),
		"total_users", snap.Totals.TotalUsers)
}

func (s *Service) recordFailure(err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev := s.state.Load()
	next := *prev
	next.LastError = err.Error()
	next.Loading = false
	next.Polls++
	next.Failures++
	s.state.Store(&next)

	if prev.Snapshot == nil {
		s.log.Error("Error fetching analytics", "error", err)
	} else {
		s.log.Warn("Analytics poll failed, keeping previous snapshot",
			"error", err,
			"last_updated", prev.LastUpdated,
			"retry_interval", s.pollInterval)
	}
}

func (s *Service) tick() {
	s.tracker.Tick()
}

// State returns a copy of the current state with a fresh elapsed counter.
func (s *Service) State() State {
	st := *s.state.Load()
	st.SecondsAgo = s.tracker.SecondsAgo()
	return st
}
