// Package cloud implements the managed-database transport strategy on
// Postgres: the league document lives in a single league_state row keyed
// by league name. Fetch is a point read, push is an upsert.
//
// Conflicts are not detected here. The backend offers no precondition
// signal, so every push failure is treated as transient; the only
// concession is write suppression, where a push whose content hash matches
// the last successful push is skipped without touching the network.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/racklinehq/rackline/internal/league"
	"github.com/racklinehq/rackline/internal/remote"
)

func init() {
	remote.Register(remote.TypeCloud, New)
}

type adapter struct {
	pool   *pgxpool.Pool
	league string

	mu       sync.Mutex
	lastHash string
}

// New creates a cloud adapter from the configuration and verifies the
// connection. The league_state table is created when missing so a fresh
// database works without manual setup.
func New(cfg *remote.Config) (remote.Adapter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS league_state (
			id         TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure league_state table: %w", err)
	}

	return &adapter{pool: pool, league: cfg.LeagueName()}, nil
}

// Name implements remote.Adapter.
func (a *adapter) Name() remote.Type {
	return remote.TypeCloud
}

// Fetch implements remote.Adapter. A missing row is remote.ErrNotFound.
func (a *adapter) Fetch(ctx context.Context) (*remote.Fetched, error) {
	var payload []byte
	var storedAt time.Time
	err := a.pool.QueryRow(ctx,
		"SELECT payload, updated_at FROM league_state WHERE id = $1",
		a.league).Scan(&payload, &storedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, remote.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cloud fetch failed: %w", err)
	}

	doc, err := remote.DecodePayload(payload)
	if err != nil {
		return nil, err
	}

	updatedAt := doc.UpdatedAt
	if updatedAt == 0 {
		updatedAt = storedAt.UnixMilli()
	}

	// Re-serialize through our own encoder so the hash is comparable
	// with push hashes; JSONB does not preserve key order.
	canonical, err := remote.PayloadBytes(doc, updatedAt)
	if err != nil {
		return nil, err
	}
	hash := remote.ContentHash(canonical)

	a.mu.Lock()
	a.lastHash = hash
	a.mu.Unlock()

	return &remote.Fetched{Document: doc, UpdatedAt: updatedAt, Token: hash}, nil
}

// Push implements remote.Adapter. The write is suppressed when the
// payload hash matches the last successful push or fetch.
func (a *adapter) Push(ctx context.Context, doc *league.Document, updatedAt int64) (string, error) {
	data, err := remote.PayloadBytes(doc, updatedAt)
	if err != nil {
		return "", err
	}
	hash := remote.ContentHash(data)

	a.mu.Lock()
	unchanged := hash == a.lastHash
	a.mu.Unlock()
	if unchanged {
		return hash, nil
	}

	if _, err := a.pool.Exec(ctx, `
		INSERT INTO league_state (id, payload, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_at = now()`,
		a.league, data); err != nil {
		return "", fmt.Errorf("cloud push failed: %w", err)
	}

	a.mu.Lock()
	a.lastHash = hash
	a.mu.Unlock()
	return hash, nil
}

// Close implements remote.Adapter.
func (a *adapter) Close() {
	a.pool.Close()
}
