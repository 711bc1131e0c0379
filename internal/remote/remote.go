// Package remote provides a unified interface for the transport strategies
// that carry the league document between devices.
//
// Three strategies implement the same two-operation contract:
//
//   - cloud: a managed Postgres database holding one row per league
//   - gitstore: a JSON file in a source repository behind a revision token
//   - sharefile: a user-selected local file, with no network at all
//
// Which strategy is active is a configuration choice made at construction
// time, never a runtime shape check. Implementations register a
// constructor with this package from their init() functions and are
// created through New().
//
// Every adapter instance carries its own reconciliation metadata (content
// hash or revision token). That metadata is transport-specific and never
// leaks into the league document itself.
package remote

import (
	"context"

	"github.com/racklinehq/rackline/internal/league"
)

// Type identifies a transport strategy.
type Type string

const (
	// TypeCloud is the managed-database strategy.
	TypeCloud Type = "cloud"

	// TypeGitStore is the source-file-store strategy.
	TypeGitStore Type = "gitstore"

	// TypeShareFile is the manual file strategy.
	TypeShareFile Type = "sharefile"
)

// String returns the string representation of the strategy type.
func (t Type) String() string {
	return string(t)
}

// Fetched is the result of a successful fetch: the remote document plus
// the timestamp the reconciler compares against the local revision marker.
type Fetched struct {
	// Document is the validated-shape payload as stored remotely. The
	// reconciler still runs full validation before applying it.
	Document *league.Document

	// UpdatedAt is the remote revision marker in Unix milliseconds.
	UpdatedAt int64

	// Token is the opaque content identifier or revision token the
	// adapter observed, for diagnostics.
	Token string
}

// Adapter is the contract every transport strategy satisfies.
//
// Fetch returns the remote document, ErrNotFound when no remote document
// exists yet (a normal outcome, not a failure), or any other error for a
// transient fault.
//
// Push writes the portable document with its revision marker and returns
// the new content identifier. ErrConflict means the remote moved since the
// last known revision: the adapter clears its cached token and the caller
// must fetch before pushing again. Adapters never auto-retry a conflicted
// push with a fresh token.
type Adapter interface {
	// Name returns the strategy type.
	Name() Type

	// Fetch reads the remote document.
	Fetch(ctx context.Context) (*Fetched, error)

	// Push writes the portable document. updatedAt is the local
	// revision marker to store alongside it.
	Push(ctx context.Context, doc *league.Document, updatedAt int64) (token string, err error)

	// Close releases any held resources (connection pools etc).
	Close()
}
