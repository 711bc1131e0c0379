package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/racklinehq/rackline/internal/config"
	"github.com/racklinehq/rackline/internal/league"
	"github.com/racklinehq/rackline/internal/reconcile"
	"github.com/racklinehq/rackline/internal/remote"
	"github.com/racklinehq/rackline/internal/session"
	"github.com/racklinehq/rackline/internal/store"
	"github.com/racklinehq/rackline/internal/ui"

	// Register transport adapters.
	_ "github.com/racklinehq/rackline/internal/remote/cloud"
	_ "github.com/racklinehq/rackline/internal/remote/gitstore"
	_ "github.com/racklinehq/rackline/internal/remote/sharefile"
)

var rootCmd = &cobra.Command{
	Use:   "rackline",
	Short: "Pool league tracker with multi-device sync",
	Long: `rackline tracks a local pool (billiards) league: players, race-to
match results, and standings.

State lives on this device and optionally syncs through one of three
transports: a managed Postgres database, a GitHub repository, or manual
backup files and share codes.`,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "league", Title: "League commands:"},
		&cobra.Group{ID: "sync", Title: "Sync commands:"},
	)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the open store, the loaded document, and the sync layer
// for one command invocation.
type app struct {
	settings  *config.Settings
	store     *store.Store
	doc       *league.Document
	session   *session.Session
	remoteCfg *remote.Config

	reconciler *reconcile.Reconciler
	scheduler  *reconcile.Scheduler
	logger     *log.Logger

	// adapterErr records why the configured transport could not be
	// constructed; league commands still work, sync commands refuse.
	adapterErr error
}

// openApp loads settings, opens the store, and wires the reconciler.
// The adapter is constructed only when a transport is configured;
// every command works fully offline without one.
func openApp() (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(settings.DatabasePath())
	if err != nil {
		return nil, err
	}

	doc, err := st.LoadDocument()
	if err != nil {
		st.Close()
		return nil, err
	}
	sess, err := st.LoadSession()
	if err != nil {
		st.Close()
		return nil, err
	}
	remoteCfg, err := st.LoadRemoteConfig()
	if err != nil {
		st.Close()
		return nil, err
	}

	logger := log.New(os.Stderr, "[rackline] ", log.LstdFlags)

	var adapter remote.Adapter
	var adapterErr error
	if remoteCfg != nil && remoteCfg.Enabled() {
		adapter, adapterErr = remote.New(remoteCfg)
		if adapterErr != nil {
			// A misbehaving transport must not lock the league out of
			// local use.
			fmt.Fprintf(os.Stderr, "%s transport unavailable: %v\n", ui.RenderWarn("Warning:"), adapterErr)
			adapter = nil
		}
	}

	r := reconcile.New(doc, st, adapter, logger, func(msg string, isError bool) {
		if isError {
			fmt.Fprintf(os.Stderr, "%s %s\n", ui.RenderErr("sync:"), msg)
		} else {
			fmt.Fprintf(os.Stderr, "%s %s\n", ui.Muted("sync:"), msg)
		}
	})

	sched := reconcile.NewScheduler(r)
	sched.SetTiming(settings.DebounceDelay, settings.SyncInterval)

	return &app{
		settings:   settings,
		store:      st,
		doc:        doc,
		session:    sess,
		remoteCfg:  remoteCfg,
		reconciler: r,
		scheduler:  sched,
		logger:     logger,
		adapterErr: adapterErr,
	}, nil
}

// Close tears down timers, the adapter, and the store.
func (a *app) Close() {
	a.scheduler.Stop()
	a.reconciler.SetAdapter(nil)
	if err := a.store.Close(); err != nil {
		a.logger.Printf("failed to close store: %v", err)
	}
}

// syncConfigured reports whether a transport adapter is live: a
// strategy is configured AND its adapter constructed.
func (a *app) syncConfigured() bool {
	return a.remoteCfg != nil && a.remoteCfg.Enabled() && a.adapterErr == nil
}

// requireTransport exits unless a live transport adapter exists,
// distinguishing "never configured" from "configured but unreachable".
func (a *app) requireTransport() {
	if a.remoteCfg == nil || !a.remoteCfg.Enabled() {
		fail("no transport configured; run: rackline remote set")
	}
	if a.adapterErr != nil {
		fail("transport unavailable: %v", a.adapterErr)
	}
}

// finishMutation persists the mutated document and, when a transport is
// configured, runs one immediate reconcile pass. Sync failures are
// warnings: the local change is already saved.
func (a *app) finishMutation(ctx context.Context) {
	a.reconciler.Persist()
	if !a.syncConfigured() {
		return
	}
	if err := a.scheduler.SyncNow(ctx); err != nil {
		a.logger.Printf("sync after mutation failed: %v", err)
	}
}

// mustApp opens the app or exits.
func mustApp() *app {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return a
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s ", ui.RenderErr("Error:"))
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
