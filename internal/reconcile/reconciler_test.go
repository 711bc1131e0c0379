package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/racklinehq/rackline/internal/league"
	"github.com/racklinehq/rackline/internal/remote"
	"github.com/racklinehq/rackline/internal/store"
)

// fakeAdapter is an in-memory remote.Adapter with scriptable failures.
type fakeAdapter struct {
	mu        sync.Mutex
	fetched   *remote.Fetched
	fetchErr  error
	pushErr   error
	pushCalls int
	pushedAt  int64
}

func (f *fakeAdapter) Name() remote.Type { return "fake" }

func (f *fakeAdapter) Fetch(ctx context.Context) (*remote.Fetched, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.fetched, nil
}

func (f *fakeAdapter) Push(ctx context.Context, doc *league.Document, updatedAt int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushCalls++
	if f.pushErr != nil {
		return "", f.pushErr
	}
	f.pushedAt = updatedAt
	return fmt.Sprintf("rev-%d", f.pushCalls), nil
}

func (f *fakeAdapter) Close() {}

func (f *fakeAdapter) pushes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pushCalls
}

func newTestReconciler(t *testing.T, doc *league.Document, adapter remote.Adapter) *Reconciler {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "rackline.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(doc, st, adapter, nil, nil)
}

func docWithPlayer(t *testing.T, name string, updatedAt int64) *league.Document {
	t.Helper()
	doc := league.NewDocument()
	if _, err := doc.AddPlayer(name, ""); err != nil {
		t.Fatalf("failed to add player: %v", err)
	}
	doc.UpdatedAt = updatedAt
	return doc
}

func TestReconcileRemoteNewerWins(t *testing.T) {
	local := docWithPlayer(t, "Alice", 100)
	remoteDoc := docWithPlayer(t, "Bob", 200)
	adapter := &fakeAdapter{fetched: &remote.Fetched{Document: remoteDoc, UpdatedAt: 200, Token: "r1"}}

	r := newTestReconciler(t, local, adapter)
	if err := r.Reconcile(context.Background(), "test"); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	got := r.Document()
	if got.UpdatedAt != 200 {
		t.Errorf("expected local to adopt remote marker 200, got %d", got.UpdatedAt)
	}
	if len(got.Players) != 1 || got.Players[0].Name != "Bob" {
		t.Errorf("expected remote players to replace local, got %+v", got.Players)
	}
	if adapter.pushes() != 0 {
		t.Errorf("a pull must never trigger a push in the same pass, got %d pushes", adapter.pushes())
	}
}

func TestReconcileLocalNewerPushes(t *testing.T) {
	local := docWithPlayer(t, "Alice", 300)
	remoteDoc := docWithPlayer(t, "Bob", 200)
	adapter := &fakeAdapter{fetched: &remote.Fetched{Document: remoteDoc, UpdatedAt: 200}}

	r := newTestReconciler(t, local, adapter)
	if err := r.Reconcile(context.Background(), "test"); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if adapter.pushes() != 1 {
		t.Fatalf("expected 1 push, got %d", adapter.pushes())
	}
	if adapter.pushedAt != 300 {
		t.Errorf("expected push with marker 300, got %d", adapter.pushedAt)
	}
	if r.Document().Players[0].Name != "Alice" {
		t.Errorf("local document must be untouched by a push")
	}
}

func TestReconcileEqualMarkersNoOp(t *testing.T) {
	local := docWithPlayer(t, "Alice", 500)
	remoteDoc := docWithPlayer(t, "Alice", 500)
	adapter := &fakeAdapter{fetched: &remote.Fetched{Document: remoteDoc, UpdatedAt: 500}}

	r := newTestReconciler(t, local, adapter)
	if err := r.Reconcile(context.Background(), "test"); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if adapter.pushes() != 0 {
		t.Errorf("equal markers must be a no-op, got %d pushes", adapter.pushes())
	}
}

func TestReconcileFetchFailureAbortsUntouched(t *testing.T) {
	local := docWithPlayer(t, "Alice", 100)
	adapter := &fakeAdapter{fetchErr: errors.New("connection refused")}

	var gotErr bool
	r := newTestReconciler(t, local, adapter)
	r.status = func(msg string, isError bool) {
		if isError {
			gotErr = true
		}
	}

	if err := r.Reconcile(context.Background(), "test"); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	if adapter.pushes() != 0 {
		t.Errorf("no push may happen after a failed fetch, got %d", adapter.pushes())
	}
	if r.Document().UpdatedAt != 100 {
		t.Errorf("local document must be untouched after a failed fetch")
	}
	if !gotErr {
		t.Errorf("expected an error status report")
	}
}

func TestReconcileInvalidRemoteNotApplied(t *testing.T) {
	local := docWithPlayer(t, "Alice", 100)

	// Remote carries a newer marker but duplicate player IDs.
	bad := league.NewDocument()
	bad.Players = []*league.Player{
		{ID: "dup", Name: "One", Active: true},
		{ID: "dup", Name: "Two", Active: true},
	}
	bad.UpdatedAt = 999
	adapter := &fakeAdapter{fetched: &remote.Fetched{Document: bad, UpdatedAt: 999}}

	r := newTestReconciler(t, local, adapter)
	err := r.Reconcile(context.Background(), "test")
	if !errors.Is(err, league.ErrPlayerIDs) {
		t.Fatalf("expected player ID validation error, got %v", err)
	}
	got := r.Document()
	if got.UpdatedAt != 100 || got.Players[0].Name != "Alice" {
		t.Errorf("invalid remote document must never be applied, got %+v", got)
	}
}

func TestReconcileNotFoundPushesLocalContent(t *testing.T) {
	local := docWithPlayer(t, "Alice", 100)
	adapter := &fakeAdapter{fetchErr: remote.ErrNotFound}

	r := newTestReconciler(t, local, adapter)
	if err := r.Reconcile(context.Background(), "test"); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if adapter.pushes() != 1 {
		t.Errorf("missing remote with local content must push, got %d pushes", adapter.pushes())
	}
}

func TestReconcileNotFoundEmptyLocalSkipsPush(t *testing.T) {
	local := league.NewDocument()
	local.UpdatedAt = 100
	adapter := &fakeAdapter{fetchErr: remote.ErrNotFound}

	r := newTestReconciler(t, local, adapter)
	if err := r.Reconcile(context.Background(), "test"); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if adapter.pushes() != 0 {
		t.Errorf("an empty local document must not seed the remote, got %d pushes", adapter.pushes())
	}
}

func TestReconcileConflictSurfacesWithoutRetry(t *testing.T) {
	local := docWithPlayer(t, "Alice", 300)
	remoteDoc := docWithPlayer(t, "Bob", 200)
	adapter := &fakeAdapter{
		fetched: &remote.Fetched{Document: remoteDoc, UpdatedAt: 200},
		pushErr: remote.ErrConflict,
	}

	r := newTestReconciler(t, local, adapter)
	err := r.Reconcile(context.Background(), "test")
	if !errors.Is(err, remote.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if adapter.pushes() != 1 {
		t.Errorf("a conflict must never be auto-retried, got %d pushes", adapter.pushes())
	}
}

func TestReconcileNoAdapter(t *testing.T) {
	r := newTestReconciler(t, league.NewDocument(), nil)
	r.SetAdapter(nil)
	if err := r.Reconcile(context.Background(), "test"); !errors.Is(err, ErrNoAdapter) {
		t.Fatalf("expected ErrNoAdapter, got %v", err)
	}
}

// slowAdapter blocks Fetch until released, to exercise the
// single-flight guard.
type slowAdapter struct {
	fakeAdapter
	release chan struct{}
	started chan struct{}
}

func (s *slowAdapter) Fetch(ctx context.Context) (*remote.Fetched, error) {
	s.started <- struct{}{}
	<-s.release
	return nil, remote.ErrNotFound
}

func TestReconcileSingleFlight(t *testing.T) {
	adapter := &slowAdapter{
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	r := newTestReconciler(t, league.NewDocument(), adapter)

	done := make(chan error, 1)
	go func() { done <- r.Reconcile(context.Background(), "first") }()
	<-adapter.started

	if err := r.Reconcile(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy while a pass is in flight, got %v", err)
	}

	close(adapter.release)
	if err := <-done; err != nil {
		t.Fatalf("first pass failed: %v", err)
	}

	// After the flight settles a new pass may start again.
	adapter.release = make(chan struct{})
	close(adapter.release)
	go func() { <-adapter.started }()
	if err := r.Reconcile(context.Background(), "third"); errors.Is(err, ErrBusy) {
		t.Fatalf("guard must clear once the pass completes")
	}
}

// TestTwoDeviceLastWriterWins documents the accepted lossy outcome:
// two devices mutate offline, the later wall-clock marker wins, and
// the earlier device's edits are discarded wholesale.
func TestTwoDeviceLastWriterWins(t *testing.T) {
	deviceA := docWithPlayer(t, "Alice", 1000)
	deviceB := docWithPlayer(t, "Bob", 2000)

	// Device A reconciles first and seeds the remote.
	adapter := &fakeAdapter{fetchErr: remote.ErrNotFound}
	ra := newTestReconciler(t, deviceA, adapter)
	if err := ra.Reconcile(context.Background(), "a"); err != nil {
		t.Fatalf("device A reconcile failed: %v", err)
	}
	if adapter.pushedAt != 1000 {
		t.Fatalf("expected device A to seed remote at 1000, got %d", adapter.pushedAt)
	}

	// Device B, with the later marker, overwrites.
	adapter.mu.Lock()
	adapter.fetchErr = nil
	adapter.fetched = &remote.Fetched{Document: deviceA.Portable(), UpdatedAt: 1000}
	adapter.mu.Unlock()

	rb := newTestReconciler(t, deviceB, adapter)
	if err := rb.Reconcile(context.Background(), "b"); err != nil {
		t.Fatalf("device B reconcile failed: %v", err)
	}
	if adapter.pushedAt != 2000 {
		t.Fatalf("expected device B to overwrite remote at 2000, got %d", adapter.pushedAt)
	}

	// Device A pulls and loses its player entirely.
	adapter.mu.Lock()
	adapter.fetched = &remote.Fetched{Document: deviceB.Portable(), UpdatedAt: 2000}
	adapter.mu.Unlock()
	if err := ra.Reconcile(context.Background(), "a"); err != nil {
		t.Fatalf("device A second reconcile failed: %v", err)
	}
	got := ra.Document()
	if len(got.Players) != 1 || got.Players[0].Name != "Bob" {
		t.Errorf("last writer wins is wholesale: expected only Bob, got %+v", got.Players)
	}
}

func BenchmarkReconcilePass(b *testing.B) {
	doc := league.NewDocument()
	for i := 0; i < 16; i++ {
		if _, err := doc.AddPlayer(fmt.Sprintf("Player %d", i), ""); err != nil {
			b.Fatalf("failed to add player: %v", err)
		}
	}
	doc.UpdatedAt = 100

	st, err := store.Open(filepath.Join(b.TempDir(), "rackline.db"))
	if err != nil {
		b.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	adapter := &fakeAdapter{fetched: &remote.Fetched{Document: doc.Portable(), UpdatedAt: 100}}
	r := New(doc, st, adapter, log.New(io.Discard, "", 0), nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := r.Reconcile(context.Background(), "bench"); err != nil {
			b.Fatalf("reconcile failed: %v", err)
		}
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
