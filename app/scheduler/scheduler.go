package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	syncer "github.com/ivlebedev/cubox-daily/app/sync"
)

// Runner is the sync pass the scheduler triggers.
type Runner interface {
	Run(ctx context.Context) (*syncer.Result, error)
}

var _ Runner = (*syncer.Engine)(nil)

// Scheduler triggers a sync pass at a fixed interval. Overlap with a manual
// trigger is prevented by the engine's own guard, not here; a tick that lands
// during a pass is simply a no-op.
type Scheduler struct {
	runner   Runner
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	interval time.Duration
	update   chan time.Duration
}

// NewScheduler creates a scheduler ticking every interval. A zero interval
// disables the timer until UpdateInterval raises it.
func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:   runner,
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
		update:   make(chan time.Duration, 1),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	slog.Debug("Scheduler started", "interval", s.interval.String())
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// UpdateInterval resets the timer, e.g. after a settings reload. Zero
// disables automatic syncing.
func (s *Scheduler) UpdateInterval(interval time.Duration) {
	s.mu.Lock()
	changed := interval != s.interval
	s.interval = interval
	s.mu.Unlock()

	if !changed {
		return
	}

	select {
	case s.update <- interval:
	case <-s.ctx.Done():
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.mu.Lock()
	interval := s.interval
	s.mu.Unlock()

	var ticker *time.Ticker
	var tick <-chan time.Time

	startTicker := func(d time.Duration) {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tick = nil
		}
		if d > 0 {
			ticker = time.NewTicker(d)
			tick = ticker.C
		}
	}

	startTicker(interval)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-s.ctx.Done():
			return

		case d := <-s.update:
			slog.Info("Sync interval updated", "interval", d.String())
			startTicker(d)

		case <-tick:
			s.trigger()
		}
	}
}

func (s *Scheduler) trigger() {
	result, err := s.runner.Run(s.ctx)
	if err != nil {
		// A failed pass never blocks the next scheduled attempt.
		slog.Error("Scheduled sync failed", "error", err)
		return
	}

	if result.Status == syncer.StatusAlreadyRunning {
		slog.Debug("Scheduled sync skipped, pass already in flight")
	}
}
