package reconcile

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/racklinehq/rackline/internal/league"
	"github.com/racklinehq/rackline/internal/remote"
)

func newTestScheduler(t *testing.T) (*Scheduler, *atomic.Int32) {
	t.Helper()
	adapter := &fakeAdapter{fetchErr: remote.ErrNotFound}
	r := newTestReconciler(t, league.NewDocument(), adapter)
	s := NewScheduler(r)
	s.delay = 50 * time.Millisecond

	var fired atomic.Int32
	s.run = func(reason string) { fired.Add(1) }
	t.Cleanup(s.Stop)
	return s, &fired
}

func TestSchedulerCoalescesBurst(t *testing.T) {
	s, fired := newTestScheduler(t)

	for i := 0; i < 10; i++ {
		s.Notify()
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, time.Second, func() bool { return fired.Load() == 1 })
	// Allow any stray timer to misfire before asserting.
	time.Sleep(3 * s.delay)
	if n := fired.Load(); n != 1 {
		t.Fatalf("a burst of mutations must produce exactly one pass, got %d", n)
	}
}

func TestSchedulerNotifyResetsTimer(t *testing.T) {
	s, fired := newTestScheduler(t)

	// Keep notifying inside the window: no pass may fire yet.
	for i := 0; i < 5; i++ {
		s.Notify()
		time.Sleep(s.delay / 2)
	}
	if n := fired.Load(); n != 0 {
		t.Fatalf("timer must reset on each notify, but %d passes fired early", n)
	}

	waitFor(t, time.Second, func() bool { return fired.Load() == 1 })
}

func TestSyncNowCancelsPendingDebounce(t *testing.T) {
	adapter := &fakeAdapter{fetchErr: remote.ErrNotFound}
	doc := docWithPlayer(t, "Alice", 100)
	r := newTestReconciler(t, doc, adapter)
	s := NewScheduler(r)
	s.delay = 50 * time.Millisecond
	t.Cleanup(s.Stop)

	s.Notify()
	if err := s.SyncNow(context.Background()); err != nil {
		t.Fatalf("manual sync failed: %v", err)
	}
	if adapter.pushes() != 1 {
		t.Fatalf("expected 1 push from the manual pass, got %d", adapter.pushes())
	}

	// The cancelled debounce must not fire a second pass.
	time.Sleep(3 * s.delay)
	if adapter.pushes() != 1 {
		t.Fatalf("manual sync must cancel the pending timer, got %d pushes", adapter.pushes())
	}
}

func TestSchedulerNotifyAtExpiryStaysCancellable(t *testing.T) {
	s, fired := newTestScheduler(t)
	s.delay = time.Millisecond

	// Drive notifies right at timer expiry so re-arming races the old
	// callback. A callback that survives its own supersession would
	// leave a timer no Stop can cancel.
	for i := 0; i < 200; i++ {
		s.Notify()
		time.Sleep(s.delay)
	}

	s.Stop()
	before := fired.Load()
	time.Sleep(50 * s.delay)
	if after := fired.Load(); after != before {
		t.Fatalf("a pass fired after Stop: %d before, %d after", before, after)
	}
}

func TestSchedulerSupersededTimerDoesNotFire(t *testing.T) {
	s, fired := newTestScheduler(t)
	s.delay = 20 * time.Millisecond

	s.Notify()
	// Re-arm midway through the window, then again; only the final
	// arming may deliver a pass.
	time.Sleep(s.delay / 2)
	s.Notify()
	time.Sleep(s.delay / 2)
	s.Notify()

	waitFor(t, time.Second, func() bool { return fired.Load() == 1 })
	time.Sleep(3 * s.delay)
	if n := fired.Load(); n != 1 {
		t.Fatalf("superseded timers must not fire, got %d passes", n)
	}
}

func TestSchedulerStopPreventsFiring(t *testing.T) {
	s, fired := newTestScheduler(t)

	s.Notify()
	s.Stop()
	time.Sleep(3 * s.delay)
	if n := fired.Load(); n != 0 {
		t.Fatalf("no pass may fire after Stop, got %d", n)
	}

	// Notify after Stop is a no-op.
	s.Notify()
	time.Sleep(3 * s.delay)
	if n := fired.Load(); n != 0 {
		t.Fatalf("notify after Stop must be ignored, got %d", n)
	}
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	s, _ := newTestScheduler(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run must return promptly when its context is cancelled")
	}
}
