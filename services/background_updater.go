package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nfl-projections-go/logging"

	"github.com/robfig/cron/v3"
)

// Refresher recomputes the projections table.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context) error

func (f RefreshFunc) Refresh(ctx context.Context) error { return f(ctx) }

// BackgroundUpdater runs scheduled projection refreshes on a cron schedule.
// A run that is still going when the next tick fires is skipped.
type BackgroundUpdater struct {
	schedule  string
	refresher Refresher
	timeout   time.Duration
	logger    *logging.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
	lastRun time.Time
	lastErr error
}

// NewBackgroundUpdater validates schedule (standard 5-field cron or a
// descriptor such as "@daily").
func NewBackgroundUpdater(schedule string, refresher Refresher, timeout time.Duration) (*BackgroundUpdater, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &BackgroundUpdater{
		schedule:  schedule,
		refresher: refresher,
		timeout:   timeout,
		logger:    logging.WithPrefix("BackgroundUpdater"),
	}, nil
}

// Start begins scheduling refreshes.
func (bu *BackgroundUpdater) Start() {
	bu.mu.Lock()
	defer bu.mu.Unlock()
	if bu.running {
		bu.logger.Warn("Already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New(cron.WithChain(
		cron.Recover(cron.VerbosePrintfLogger(bu.logger)),
		cron.SkipIfStillRunning(cron.VerbosePrintfLogger(bu.logger)),
	))
	// The schedule was validated in the constructor.
	_, _ = c.AddFunc(bu.schedule, func() { bu.RunOnce(ctx) })
	c.Start()

	bu.cron = c
	bu.cancel = cancel
	bu.running = true
	bu.logger.Infof("Scheduled projection refresh: %s", bu.schedule)
}

// Stop cancels any refresh in flight and waits for it to return.
func (bu *BackgroundUpdater) Stop() {
	bu.mu.Lock()
	if !bu.running {
		bu.mu.Unlock()
		return
	}
	bu.running = false
	c, cancel := bu.cron, bu.cancel
	bu.mu.Unlock()

	cancel()
	<-c.Stop().Done()
	bu.logger.Info("Stopped")
}

// RunOnce performs one refresh with the configured timeout.
func (bu *BackgroundUpdater) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, bu.timeout)
	defer cancel()

	start := time.Now()
	err := bu.refresher.Refresh(ctx)

	bu.mu.Lock()
	bu.lastRun, bu.lastErr = start, err
	bu.mu.Unlock()

	if err != nil {
		bu.logger.Errorf("Scheduled refresh failed after %v: %v", time.Since(start).Round(time.Millisecond), err)
		return err
	}
	bu.logger.Infof("Scheduled refresh finished in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

// IsRunning reports whether the schedule is active.
func (bu *BackgroundUpdater) IsRunning() bool {
	bu.mu.Lock()
	defer bu.mu.Unlock()
	return bu.running
}

// LastRun returns the start time and error of the latest refresh.
func (bu *BackgroundUpdater) LastRun() (time.Time, error) {
	bu.mu.Lock()
	defer bu.mu.Unlock()
	return bu.lastRun, bu.lastErr
}
