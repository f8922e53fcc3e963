package mirror

import (
	"context"
	"sync"
	"time"

	"github.com/jdesfossez/gt1000ctl/internal/effect"
	"github.com/jdesfossez/gt1000ctl/internal/logger"
	"github.com/jdesfossez/gt1000ctl/internal/metrics"
	"github.com/jdesfossez/gt1000ctl/internal/telemetry"
)

// Model is the subset of effect.Model the Scheduler depends on to run a
// full read pass.
type Model interface {
	GetState(ctx context.Context, category string) ([]effect.State, error)
}

// LastActionTSFunc returns the monotonic timestamp (nanoseconds) of the
// most recent optimistic write the Facade issued for category, or 0 if
// none has been issued yet. The Scheduler consults this after a
// category's reads complete and compares it with a timestamp taken before
// the reads began, so a write issued while the reads were in flight makes
// the refresh discard its result (see refreshCategory).
type LastActionTSFunc func(category string) int64

// Scheduler drives the background refresher: it wakes on a timer,
// re-reads every category in effect.Categories, and updates the Mirror
// one category at a time, reconciling each against the Facade's most
// recent optimistic write for that category.
type Scheduler struct {
	model         Model
	mirror        *Mirror
	lastActionTS  LastActionTSFunc

	refreshInterval      time.Duration
	shutdownPollInterval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}

	cycle int

	metricsMu sync.RWMutex
	metrics   metrics.Recorder // optional; nil disables collection
}

// NewScheduler builds a Scheduler. lastActionTS may be nil, in which case
// every refresh is always applied (used by tests and one-shot CLI
// invocations that never perform an optimistic write).
func NewScheduler(model Model, mirror *Mirror, refreshInterval, shutdownPollInterval time.Duration, lastActionTS LastActionTSFunc) *Scheduler {
	if lastActionTS == nil {
		lastActionTS = func(string) int64 { return 0 }
	}
	return &Scheduler{
		model:                model,
		mirror:               mirror,
		lastActionTS:         lastActionTS,
		refreshInterval:      refreshInterval,
		shutdownPollInterval: shutdownPollInterval,
		stopCh:               make(chan struct{}),
		doneCh:               make(chan struct{}),
	}
}

// SetMetrics attaches a Recorder every subsequent RefreshOnce pass reports
// its duration through. Safe to call while the background loop is running;
// passing nil disables collection.
func (s *Scheduler) SetMetrics(r metrics.Recorder) {
	s.metricsMu.Lock()
	defer s.metricsMu.Unlock()
	s.metrics = r
}

// RefreshOnce runs a single full pass over every category, used both for
// the first refresh Facade.Open performs synchronously and by each tick
// of the background loop. Per-category failures are logged and simply
// leave that category's last_sync_ts unchanged; they do not abort the
// pass.
func (s *Scheduler) RefreshOnce(ctx context.Context) {
	s.cycle++
	ctx, span := telemetry.StartMirrorSpan(ctx, telemetry.SpanMirrorRefresh, s.cycle)
	defer span.End()

	start := time.Now()
	for _, category := range effect.Categories {
		s.refreshCategory(ctx, category)
	}

	s.metricsMu.RLock()
	rec := s.metrics
	s.metricsMu.RUnlock()
	if rec != nil {
		rec.ObserveRefreshCycle(time.Since(start))
	}
}

// refreshCategory reads one category's full state and reconciles it
// against the Facade's last optimistic write for that category. The
// candidate sync timestamp is captured before the reads begin: if a write
// for this category landed after that instant, this pass's data is
// already stale with respect to it, and is discarded rather than
// clobbering the optimistic mirror entry.
func (s *Scheduler) refreshCategory(ctx context.Context, category string) {
	candidateSyncTS := time.Now().UnixNano()

	states, err := s.model.GetState(ctx, category)
	if err != nil {
		logger.WarnCtx(ctx, "mirror refresh category failed", logger.Category(category), logger.Err(err))
		telemetry.RecordError(ctx, err)
		return
	}

	if candidateSyncTS <= s.lastActionTS(category) {
		logger.DebugCtx(ctx, "mirror refresh superseded by optimistic write", logger.Category(category),
			logger.LastActionTS(s.lastActionTS(category)), logger.LastSyncTS(candidateSyncTS))
		return
	}

	s.mirror.replace(category, states, candidateSyncTS)
	logger.DebugCtx(ctx, "mirror refreshed category", logger.Category(category), logger.LastSyncTS(candidateSyncTS), logger.Cycle(s.cycle))
}

// Start launches the background refresh loop in its own goroutine. Each
// refreshInterval period is slept out in shutdownPollInterval slices so a
// Stop request is honored within one slice rather than the full period.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.doneCh)

	for {
		if !s.sleepOutInterval(ctx) {
			return
		}
		s.RefreshOnce(ctx)
	}
}

// sleepOutInterval waits refreshInterval, checking the stop flag and
// ctx.Done() every shutdownPollInterval slice. Returns false if shutdown
// was requested during the wait.
func (s *Scheduler) sleepOutInterval(ctx context.Context) bool {
	slice := s.shutdownPollInterval
	if slice <= 0 || slice > s.refreshInterval {
		slice = s.refreshInterval
	}

	elapsed := time.Duration(0)
	ticker := time.NewTicker(slice)
	defer ticker.Stop()

	for elapsed < s.refreshInterval {
		select {
		case <-s.stopCh:
			return false
		case <-ctx.Done():
			return false
		case <-ticker.C:
			elapsed += slice
		}
	}
	return true
}

// Stop signals the background loop to exit and blocks until it has. Safe
// to call multiple times.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	<-s.doneCh
}
