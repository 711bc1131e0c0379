package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/racklinehq/rackline/internal/remote/sharefile"
	"github.com/racklinehq/rackline/internal/ui"
)

var shareCmd = &cobra.Command{
	Use:     "share",
	GroupID: "sync",
	Short:   "Exchange league state through share codes",
	Long: `Share codes are a transport of last resort: a base64 snapshot of the
whole league, pasted between devices. Applying a code replaces local
state entirely.`,
}

var shareOutCmd = &cobra.Command{
	Use:   "out",
	Short: "Print a share code for the current league",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		code, err := sharefile.EncodeCode(a.doc)
		if err != nil {
			fail("%v", err)
		}
		fmt.Println(code)
	},
}

var shareInYes bool

var shareInCmd = &cobra.Command{
	Use:   "in [code]",
	Short: "Apply a share code, replacing local state",
	Long: `Apply a share code from the argument or stdin. The snapshot is
validated first; an invalid code changes nothing. Raw backup JSON is
accepted as well as base64 codes.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		var code string
		if len(args) == 1 {
			code = args[0]
		} else {
			fmt.Fprintln(os.Stderr, "Paste share code, then EOF (Ctrl-D):")
			var sb strings.Builder
			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
			for scanner.Scan() {
				sb.WriteString(scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				fail("failed to read stdin: %v", err)
			}
			code = sb.String()
		}

		incoming, err := sharefile.DecodeCode(code)
		if err != nil {
			fail("%v", err)
		}

		if !shareInYes && !confirm(fmt.Sprintf(
			"Replace local state with %d players and %d matches?",
			len(incoming.Players), len(incoming.Matches))) {
			fmt.Println("Aborted.")
			return
		}

		a.doc.Replace(incoming)
		a.doc.Touch()
		a.finishMutation(cmd.Context())

		fmt.Printf("%s Applied: %d players, %d matches\n", ui.RenderPass("✓"),
			len(a.doc.Players), len(a.doc.Matches))
	},
}

func init() {
	shareInCmd.Flags().BoolVarP(&shareInYes, "yes", "y", false, "skip confirmation")
	shareCmd.AddCommand(shareOutCmd, shareInCmd)
	rootCmd.AddCommand(shareCmd)
}
