package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/racklinehq/rackline/internal/daemon"
	"github.com/racklinehq/rackline/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Reconcile local state with the configured transport",
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Run one reconcile pass immediately",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		a.requireTransport()

		start := time.Now()
		if err := a.scheduler.SyncNow(cmd.Context()); err != nil {
			fail("%v", err)
		}
		fmt.Printf("%s Synced in %s\n", ui.RenderPass("✓"), time.Since(start).Round(time.Millisecond))
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync configuration and local state",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		fmt.Printf("%s\n", ui.RenderAccent("Sync status"))

		if a.session != nil && a.session.LoggedIn {
			fmt.Printf("  Account:   %s\n", a.session.User.Name)
		} else {
			fmt.Printf("  Account:   %s\n", ui.Muted("not signed in"))
		}

		switch {
		case a.syncConfigured():
			fmt.Printf("  Transport: %s (league %q)\n", a.remoteCfg.Type, a.remoteCfg.LeagueName())
		case a.remoteCfg != nil && a.remoteCfg.Enabled():
			fmt.Printf("  Transport: %s (%s)\n", a.remoteCfg.Type, ui.RenderErr("unavailable"))
		default:
			fmt.Printf("  Transport: %s\n", ui.Muted("none"))
		}

		fmt.Printf("  Players:   %d\n", len(a.doc.Players))
		fmt.Printf("  Matches:   %d\n", len(a.doc.Matches))
		if a.doc.UpdatedAt > 0 {
			t := time.UnixMilli(a.doc.UpdatedAt)
			fmt.Printf("  Updated:   %s\n", ui.Muted(t.Format(time.RFC3339)))
		}
	},
}

var syncDaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background sync agent",
	Long: `Run the sync agent in the foreground. It reconciles on an interval
and, when an inbox directory is configured, imports backup files dropped
there. Stop with Ctrl-C.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		a.requireTransport()

		var out io.Writer = os.Stderr
		if a.settings.LogFile != "" {
			out = &lumberjack.Logger{
				Filename:   a.settings.LogFile,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
		logger := log.New(out, "[daemon] ", log.LstdFlags)

		d, err := daemon.New(a.reconciler, a.scheduler, &daemon.Config{
			InboxDir: a.settings.InboxDir,
			Logger:   logger,
		})
		if err != nil {
			fail("%v", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("%s Sync agent running (interval %s)\n", ui.RenderAccent("▶"), a.settings.SyncInterval)
		if err := d.Start(ctx); err != nil {
			fail("%v", err)
		}
	},
}

func init() {
	syncCmd.AddCommand(syncNowCmd, syncStatusCmd, syncDaemonCmd)
	rootCmd.AddCommand(syncCmd)
}
