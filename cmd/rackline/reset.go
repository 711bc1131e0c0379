package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/racklinehq/rackline/internal/ui"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:     "reset",
	GroupID: "league",
	Short:   "Delete all players and matches",
	Long: `Reset the league to an empty document. The cleared state is synced
like any other change, so a configured remote is emptied too.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		if a.doc.Empty() {
			fmt.Println("League is already empty.")
			return
		}
		if !resetYes && !confirm(fmt.Sprintf(
			"Delete all %d players and %d matches? This cannot be undone.",
			len(a.doc.Players), len(a.doc.Matches))) {
			fmt.Println("Aborted.")
			return
		}

		a.doc.Reset()
		a.finishMutation(cmd.Context())
		fmt.Printf("%s League reset\n", ui.RenderPass("✓"))
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip confirmation")
	rootCmd.AddCommand(resetCmd)
}
