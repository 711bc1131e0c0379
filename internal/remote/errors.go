package remote

import (
	"errors"

	"github.com/racklinehq/rackline/internal/league"
)

// Common errors returned by transport adapters.
//
// Check them with errors.Is():
//
//	if errors.Is(err, remote.ErrNotFound) {
//	    // no remote document yet; consider pushing
//	}
var (
	// ErrNotFound is returned by Fetch when no remote document exists
	// yet. It is a distinguishable, non-error outcome: nothing to pull,
	// push if the local document has content.
	ErrNotFound = errors.New("no remote document found")

	// ErrConflict is returned by Push when the remote moved since the
	// last known revision token. The cached token has been cleared;
	// fetch the latest before retrying.
	ErrConflict = errors.New("remote changed since last sync, pull latest before retrying")

	// ErrNotConfigured is returned when the active strategy is missing
	// required configuration.
	ErrNotConfigured = errors.New("remote sync is not configured")
)

// IsTransient reports whether an adapter error should be treated as a
// transient transport fault: surfaced as status, retried on the next
// scheduled pass, with no backoff and no retry budget. Not-found and
// conflict outcomes have their own handling and are excluded.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrNotConfigured) {
		return false
	}
	if errors.Is(err, league.ErrInvalidFormat) {
		return false
	}
	return true
}
