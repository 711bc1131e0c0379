// Package daemon provides the background sync agent.
//
// The daemon:
// 1. Periodically reconciles the local document with the remote
// 2. Watches an optional inbox directory for dropped backup files
// 3. Imports valid backups and schedules a push
// 4. Handles graceful shutdown without orphaned timers
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/racklinehq/rackline/internal/reconcile"
	"github.com/racklinehq/rackline/internal/remote/sharefile"
)

// Config holds configuration for the daemon.
type Config struct {
	// InboxDir is watched for dropped *.json backup files. Empty
	// disables the watcher.
	InboxDir string

	// SettleInterval is how long a dropped file must sit unchanged
	// before it is imported. This avoids reading half-written files.
	SettleInterval time.Duration

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SettleInterval: 500 * time.Millisecond,
		Logger:         log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Daemon drives periodic reconciliation and inbox imports.
type Daemon struct {
	reconciler *reconcile.Reconciler
	scheduler  *reconcile.Scheduler
	config     *Config

	watcher *fsnotify.Watcher

	pending   map[string]time.Time // dropped file -> last event time
	pendingMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a daemon around an existing reconciler and scheduler.
func New(r *reconcile.Reconciler, s *reconcile.Scheduler, config *Config) (*Daemon, error) {
	if r == nil {
		return nil, fmt.Errorf("reconciler cannot be nil")
	}
	if s == nil {
		return nil, fmt.Errorf("scheduler cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = DefaultConfig().Logger
	}
	if config.SettleInterval <= 0 {
		config.SettleInterval = DefaultConfig().SettleInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		reconciler: r,
		scheduler:  s,
		config:     config,
		pending:    make(map[string]time.Time),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start begins the daemon's operation.
//
// An initial reconcile pass runs immediately, then the periodic loop
// takes over. This blocks until ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	if err := d.reconciler.Reconcile(ctx, "startup"); err != nil {
		// Startup sync failures are not fatal; the periodic loop
		// retries on its own cadence.
		d.config.Logger.Printf("Startup sync failed: %v", err)
	}

	if d.config.InboxDir != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		if err := watcher.Add(d.config.InboxDir); err != nil {
			watcher.Close()
			return fmt.Errorf("failed to watch inbox directory: %w", err)
		}
		d.watcher = watcher
		d.config.Logger.Printf("Watching inbox: %s", d.config.InboxDir)

		d.wg.Add(2)
		go d.watchInboxEvents()
		go d.processPendingImports()
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.scheduler.Run(d.ctx)
	}()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping daemon")

	d.cancel()
	d.scheduler.Stop()

	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			d.config.Logger.Printf("Error closing watcher: %v", err)
		}
	}

	d.wg.Wait()
	d.config.Logger.Println("Daemon stopped")
	return nil
}

// watchInboxEvents queues dropped backup files for import.
func (d *Daemon) watchInboxEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			d.config.Logger.Printf("Inbox event: %s %s", event.Op, event.Name)
			d.queueImport(event.Name)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

func (d *Daemon) queueImport(path string) {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	d.pending[path] = time.Now()
}

// processPendingImports imports files that have settled.
func (d *Daemon) processPendingImports() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.SettleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.importSettled()
		}
	}
}

func (d *Daemon) importSettled() {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()

	now := time.Now()
	for path, queuedAt := range d.pending {
		if now.Sub(queuedAt) < d.config.SettleInterval {
			continue
		}
		delete(d.pending, path)

		if err := d.importFile(path); err != nil {
			d.config.Logger.Printf("Import of %s rejected: %v", path, err)
			continue
		}
		d.config.Logger.Printf("Imported %s", path)
	}
}

// importFile adopts a dropped backup. A file that fails validation is
// ignored entirely; the current document is never partially updated.
func (d *Daemon) importFile(path string) error {
	incoming, err := sharefile.ImportFile(path)
	if err != nil {
		return err
	}

	doc := d.reconciler.Document()
	doc.Replace(incoming)
	doc.Touch()
	d.reconciler.Persist()
	d.scheduler.Notify()

	// Consumed files are removed so a restart does not re-import.
	if err := os.Remove(path); err != nil {
		d.config.Logger.Printf("Failed to remove imported file %s: %v", path, err)
	}
	return nil
}
