package reconcile

import (
	"context"
	"sync"
	"time"
)

// Scheduling constants.
const (
	// DebounceDelay is how long the scheduler waits after the most
	// recent local mutation before pushing. Each new mutation inside
	// the window resets the timer, so a rapid burst of edits produces
	// one pass, timed from the last edit.
	DebounceDelay = 1500 * time.Millisecond

	// Interval is the periodic reconciliation cadence, active whenever
	// a transport is configured regardless of local activity.
	Interval = 60 * time.Second
)

// Scheduler coalesces local mutation notifications into debounced
// reconciliation passes. It holds at most ONE pending timer; Notify
// while a timer is armed cancels and re-arms rather than stacking.
type Scheduler struct {
	r        *Reconciler
	delay    time.Duration
	interval time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool

	// gen invalidates timer callbacks that were already firing when a
	// newer Notify, SyncNow, or Stop superseded them; Timer.Stop alone
	// cannot cancel a callback past its expiry.
	gen uint64

	// run is overridable so tests observe firings without a real
	// adapter round trip.
	run func(reason string)
}

// NewScheduler wraps a reconciler. Stop must be called on teardown.
func NewScheduler(r *Reconciler) *Scheduler {
	s := &Scheduler{r: r, delay: DebounceDelay, interval: Interval}
	s.run = func(reason string) {
		// Debounced and periodic passes are fire-and-forget; errors
		// surface through the reconciler's status sink and log.
		_ = r.Reconcile(context.Background(), reason)
	}
	return s
}

// SetTiming overrides the debounce delay and periodic interval.
// Non-positive values keep the defaults.
func (s *Scheduler) SetTiming(delay, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if delay > 0 {
		s.delay = delay
	}
	if interval > 0 {
		s.interval = interval
	}
}

// Notify records a local mutation: any pending debounce timer is
// cancelled and a fresh one armed for the full delay.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if s.stopped || gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		s.run("debounced")
	})
}

// SyncNow cancels any pending debounce and runs a pass immediately,
// so an explicit sync is never followed by a redundant debounced one.
func (s *Scheduler) SyncNow(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.r.Reconcile(ctx, "manual")
}

// Run drives periodic reconciliation until ctx is cancelled. It is the
// daemon's main loop body; the CLI's one-shot commands never call it.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	interval := s.interval
	s.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run("periodic")
		}
	}
}

// Stop cancels any pending timer and prevents future arming. After
// Stop no scheduled pass will fire.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
