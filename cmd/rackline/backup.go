package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/racklinehq/rackline/internal/remote/sharefile"
	"github.com/racklinehq/rackline/internal/ui"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "sync",
	Short:   "Write a backup file of the current league",
	Long: `Write the league as portable JSON. Device-local view state (selected
player, list filters) is reset in the backup so it imports cleanly on
any device.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		data, err := sharefile.ExportBytes(a.doc, a.doc.UpdatedAt)
		if err != nil {
			fail("%v", err)
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			fail("failed to write backup: %v", err)
		}
		fmt.Printf("%s Exported %d players, %d matches to %s\n", ui.RenderPass("✓"),
			len(a.doc.Players), len(a.doc.Matches), exportOut)
	},
}

var importYes bool

var importCmd = &cobra.Command{
	Use:     "import <file>",
	GroupID: "sync",
	Short:   "Replace local state from a backup file",
	Long: `Import a backup written by export. The file is validated in full
before anything changes; a rejected file leaves local state untouched.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		incoming, err := sharefile.ImportFile(args[0])
		if err != nil {
			fail("%v", err)
		}

		if !importYes && !confirm(fmt.Sprintf(
			"Replace local state with %d players and %d matches from %s?",
			len(incoming.Players), len(incoming.Matches), args[0])) {
			fmt.Println("Aborted.")
			return
		}

		a.doc.Replace(incoming)
		a.doc.Touch()
		a.finishMutation(cmd.Context())

		fmt.Printf("%s Imported %d players, %d matches\n", ui.RenderPass("✓"),
			len(a.doc.Players), len(a.doc.Matches))
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", sharefile.DefaultFileName, "output file")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "skip confirmation")
	rootCmd.AddCommand(exportCmd, importCmd)
}
