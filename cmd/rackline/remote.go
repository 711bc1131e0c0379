package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/racklinehq/rackline/internal/remote"
	"github.com/racklinehq/rackline/internal/ui"
)

var remoteCmd = &cobra.Command{
	Use:     "remote",
	GroupID: "sync",
	Short:   "Configure the sync transport",
	Long: `Configure which transport carries league state between devices:

  cloud      managed Postgres database (set --database-url)
  gitstore   a GitHub repository (set --owner, --repo, --token)
  sharefile  a backup file on disk (set --file)`,
}

var remoteSetCfg remote.Config

var remoteSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set and save the transport configuration",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		cfg := remoteSetCfg
		if err := cfg.Validate(); err != nil {
			known := make([]string, 0, 3)
			for _, t := range remote.RegisteredTypes() {
				known = append(known, string(t))
			}
			fail("%v (types: %s)", err, strings.Join(known, ", "))
		}

		if err := a.store.SaveRemoteConfig(&cfg); err != nil {
			fail("failed to save transport config: %v", err)
		}
		fmt.Printf("%s Transport set to %s (league %q)\n", ui.RenderPass("✓"),
			ui.RenderAccent(string(cfg.Type)), cfg.LeagueName())
		fmt.Println("Run: rackline sync now")
	},
}

var remoteShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved transport configuration",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		if a.remoteCfg == nil || !a.remoteCfg.Enabled() {
			fmt.Println("No transport configured.")
			return
		}
		cfg := a.remoteCfg

		fmt.Printf("%s\n", ui.RenderAccent("Transport"))
		fmt.Printf("  Type:   %s\n", cfg.Type)
		fmt.Printf("  League: %s\n", cfg.LeagueName())
		switch cfg.Type {
		case remote.TypeCloud:
			fmt.Printf("  URL:    %s\n", redact(cfg.DatabaseURL))
		case remote.TypeGitStore:
			fmt.Printf("  Repo:   %s/%s@%s %s\n", cfg.Owner, cfg.Repo, cfg.Branch, cfg.Path)
			fmt.Printf("  Token:  %s\n", redact(cfg.Token))
		case remote.TypeShareFile:
			fmt.Printf("  File:   %s\n", cfg.FilePath)
		}
	},
}

var remoteClearYes bool

var remoteClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the transport configuration",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		if !remoteClearYes && !confirm("Stop syncing and clear the transport configuration?") {
			fmt.Println("Aborted.")
			return
		}

		if err := a.store.ClearRemoteConfig(); err != nil {
			fail("failed to clear transport config: %v", err)
		}
		fmt.Printf("%s Transport cleared; league is local-only\n", ui.RenderPass("✓"))
	},
}

// redact keeps just enough of a secret to recognize it.
func redact(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "…" + s[len(s)-4:]
}

func init() {
	f := remoteSetCmd.Flags()
	f.StringVar((*string)(&remoteSetCfg.Type), "type", "", "transport type: cloud, gitstore, or sharefile")
	f.StringVar(&remoteSetCfg.League, "league", "", `league name (default "default")`)
	f.StringVar(&remoteSetCfg.DatabaseURL, "database-url", "", "Postgres connection string (cloud)")
	f.StringVar(&remoteSetCfg.Owner, "owner", "", "repository owner (gitstore)")
	f.StringVar(&remoteSetCfg.Repo, "repo", "", "repository name (gitstore)")
	f.StringVar(&remoteSetCfg.Path, "path", "", "file path inside the repository (gitstore)")
	f.StringVar(&remoteSetCfg.Branch, "branch", "", "branch to commit to (gitstore)")
	f.StringVar(&remoteSetCfg.Token, "token", "", "access token (gitstore)")
	f.StringVar(&remoteSetCfg.FilePath, "file", "", "backup file location (sharefile)")
	_ = remoteSetCmd.MarkFlagRequired("type")

	remoteClearCmd.Flags().BoolVarP(&remoteClearYes, "yes", "y", false, "skip confirmation")

	remoteCmd.AddCommand(remoteSetCmd, remoteShowCmd, remoteClearCmd)
	rootCmd.AddCommand(remoteCmd)
}
