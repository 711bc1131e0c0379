package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/racklinehq/rackline/internal/session"
	"github.com/racklinehq/rackline/internal/ui"
)

var loginToken string

var loginCmd = &cobra.Command{
	Use:     "login",
	GroupID: "sync",
	Short:   "Sign in with an identity token",
	Long: `Sign in using an OpenID Connect ID token (--token or the
RACKLINE_ID_TOKEN environment variable). Only the display profile is
kept; the token itself is never stored.`,
	Run: func(cmd *cobra.Command, args []string) {
		token := loginToken
		if token == "" {
			token = os.Getenv("RACKLINE_ID_TOKEN")
		}
		if token == "" {
			fail("no token provided; pass --token or set RACKLINE_ID_TOKEN")
		}

		sess, err := session.FromIDToken(token)
		if err != nil {
			fail("%v", err)
		}

		a := mustApp()
		defer a.Close()

		if err := a.store.SaveSession(sess); err != nil {
			fail("failed to save session: %v", err)
		}
		fmt.Printf("%s Signed in as %s\n", ui.RenderPass("✓"), ui.RenderAccent(sess.User.Name))
	},
}

var logoutCmd = &cobra.Command{
	Use:     "logout",
	GroupID: "sync",
	Short:   "Sign out",
	Long: `Clear the stored profile. League data and the transport
configuration are untouched; use "remote clear" to stop syncing.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		if a.session == nil || !a.session.LoggedIn {
			fmt.Println("Not signed in.")
			return
		}
		if err := a.store.ClearSession(); err != nil {
			fail("failed to clear session: %v", err)
		}
		fmt.Printf("%s Signed out\n", ui.RenderPass("✓"))
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "OIDC ID token")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
