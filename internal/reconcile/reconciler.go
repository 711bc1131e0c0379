// Package reconcile decides how a locally-mutated league document and a
// remotely-stored copy converge, and coalesces bursts of local mutations
// into single outbound sync passes.
//
// The policy is last-writer-wins keyed purely on the client-supplied
// updatedAt wall-clock marker: whichever side carries the greater value
// replaces the other wholesale. There is no vector clock, no per-field
// merge, and no detection of true concurrent edits; two devices editing
// offline and reconciling later will keep only the later writer's
// document. That is a known, accepted limitation of the design, not a
// bug.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/racklinehq/rackline/internal/league"
	"github.com/racklinehq/rackline/internal/remote"
	"github.com/racklinehq/rackline/internal/store"
)

// Reconciler errors.
var (
	// ErrBusy is returned when a pass is already in flight against the
	// same adapter. The caller simply waits for the next scheduled run.
	ErrBusy = errors.New("sync already in progress")

	// ErrNoAdapter is returned when no transport is configured.
	ErrNoAdapter = errors.New("no remote transport configured")
)

// StatusFunc receives human-readable sync status lines for display.
type StatusFunc func(message string, isError bool)

// Reconciler owns the local document and executes reconciliation passes
// against one transport adapter.
type Reconciler struct {
	mu      sync.Mutex // guards doc, adapter
	doc     *league.Document
	store   *store.Store
	adapter remote.Adapter

	// flight is the single-flight guard: while a fetch or push is
	// outstanding no second pass may start against the same adapter.
	// A hung request keeps the guard held until it settles.
	flightMu sync.Mutex
	inFlight bool

	logger *log.Logger
	status StatusFunc
}

// New creates a reconciler around the given document and store. adapter
// may be nil when sync is not configured; status may be nil.
func New(doc *league.Document, st *store.Store, adapter remote.Adapter, logger *log.Logger, status StatusFunc) *Reconciler {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	if status == nil {
		status = func(string, bool) {}
	}
	return &Reconciler{
		doc:     doc,
		store:   st,
		adapter: adapter,
		logger:  logger,
		status:  status,
	}
}

// Document returns the local document. Callers mutate it between passes
// and then Persist and Notify; the reconciler never mutates it while a
// caller holds it on the single event stream.
func (r *Reconciler) Document() *league.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc
}

// SetAdapter swaps the transport adapter, closing the previous one.
// Passing nil tears sync down (logout, cleared configuration).
func (r *Reconciler) SetAdapter(adapter remote.Adapter) {
	r.mu.Lock()
	old := r.adapter
	r.adapter = adapter
	r.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

// Persist writes the local document to the store. Persistence failures
// are logged and swallowed: the in-memory document stays authoritative
// for the session.
func (r *Reconciler) Persist() {
	r.mu.Lock()
	doc := r.doc
	r.mu.Unlock()
	if err := r.store.SaveDocument(doc); err != nil {
		r.logger.Printf("WARNING: failed to persist document: %v", err)
	}
}

// Reconcile runs exactly one pass: fetch the remote, compare revision
// markers, then do nothing, pull, or push.
//
//   - Fetch failure other than not-found aborts the pass untouched; the
//     next scheduled attempt retries, interval-driven, with no backoff.
//   - remote > local: the remote wins unconditionally. It is validated
//     first; a validation failure aborts without touching local state.
//     The replacement is all-or-nothing and never re-triggers a push.
//   - local > remote, or no remote and local content exists: push.
//   - equal: no-op.
func (r *Reconciler) Reconcile(ctx context.Context, reason string) error {
	r.mu.Lock()
	adapter := r.adapter
	r.mu.Unlock()
	if adapter == nil {
		return ErrNoAdapter
	}

	r.flightMu.Lock()
	if r.inFlight {
		r.flightMu.Unlock()
		r.logger.Printf("skipping %s pass: sync already in progress", reason)
		return ErrBusy
	}
	r.inFlight = true
	r.flightMu.Unlock()

	defer func() {
		r.flightMu.Lock()
		r.inFlight = false
		r.flightMu.Unlock()
	}()

	fetched, err := adapter.Fetch(ctx)
	var remoteUpdated int64
	switch {
	case err == nil:
		remoteUpdated = fetched.UpdatedAt
	case errors.Is(err, remote.ErrNotFound):
		// Nothing to pull; push below if local has content.
		fetched = nil
	case errors.Is(err, league.ErrInvalidFormat):
		r.logger.Printf("fetch returned malformed document (%s): %v", reason, err)
		r.status("Remote document is not a valid backup.", true)
		return err
	default:
		r.logger.Printf("fetch failed (%s): %v", reason, err)
		r.status(fmt.Sprintf("Sync fetch failed (%s).", reason), true)
		return err
	}

	r.mu.Lock()
	doc := r.doc
	r.mu.Unlock()
	localUpdated := doc.UpdatedAt

	switch {
	case fetched != nil && remoteUpdated > localUpdated:
		return r.pull(fetched, reason)

	case localUpdated > remoteUpdated:
		if fetched == nil && doc.Empty() {
			// No remote document and nothing worth saving yet.
			return nil
		}
		return r.push(ctx, adapter, doc, reason)

	default:
		r.logger.Printf("in sync (%s): local and remote at %d", reason, localUpdated)
		return nil
	}
}

// pull replaces the local document with the already-fetched remote copy.
func (r *Reconciler) pull(fetched *remote.Fetched, reason string) error {
	incoming := fetched.Document
	// The adapter may have derived the marker (storage timestamp) when
	// the envelope carried none; adopt the compared value either way.
	incoming.UpdatedAt = fetched.UpdatedAt
	if err := league.Validate(incoming); err != nil {
		r.logger.Printf("remote document rejected (%s): %v", reason, err)
		r.status(err.Error(), true)
		return err
	}

	r.mu.Lock()
	r.doc.Replace(incoming)
	r.mu.Unlock()

	// Persist with the remote's marker intact. This is a pull, not a
	// local mutation: no Touch, no scheduler notification.
	r.Persist()

	r.logger.Printf("pulled remote document (%s): updatedAt=%d", reason, fetched.UpdatedAt)
	r.status("State refreshed from remote.", false)
	return nil
}

// push writes the local document to the remote.
func (r *Reconciler) push(ctx context.Context, adapter remote.Adapter, doc *league.Document, reason string) error {
	token, err := adapter.Push(ctx, doc, doc.UpdatedAt)
	switch {
	case err == nil:
		r.logger.Printf("pushed local document (%s): token=%s updatedAt=%d", reason, token, doc.UpdatedAt)
		r.status(fmt.Sprintf("Saved to remote (%s).", reason), false)
		return nil
	case errors.Is(err, remote.ErrConflict):
		r.logger.Printf("push conflict (%s): %v", reason, err)
		r.status("Remote changed since last sync. Pull latest before retrying.", true)
		return err
	default:
		r.logger.Printf("push failed (%s): %v", reason, err)
		r.status("Failed to push to remote.", true)
		return err
	}
}
