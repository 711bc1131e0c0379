package main

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/racklinehq/rackline/internal/league"
	"github.com/racklinehq/rackline/internal/ui"
)

var matchCmd = &cobra.Command{
	Use:     "match",
	GroupID: "league",
	Short:   "Record and browse match results",
}

var (
	matchRaceTo  int
	matchFramesA int
	matchFramesB int
	matchOutcome string
	matchNote    string
	matchBreaker string
)

// matchInputFromFlags assembles the record-command flags into a match
// input for the given player IDs.
func matchInputFromFlags(playerAID, playerBID string) *league.MatchInput {
	return &league.MatchInput{
		PlayerAID: playerAID,
		PlayerBID: playerBID,
		RaceTo:    matchRaceTo,
		FramesA:   matchFramesA,
		FramesB:   matchFramesB,
		Outcome:   matchOutcome,
		Note:      matchNote,
		Breaker:   matchBreaker,
	}
}

var matchRecordCmd = &cobra.Command{
	Use:   "record <playerA> <playerB>",
	Short: "Record a race-to match result",
	Long: `Record a finished match. Exactly one player must have reached the
race-to target; the other must be below it. Both players must be active.

Example:
  rackline match record Alice Bob --race-to 5 --frames-a 5 --frames-b 3`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		pa := resolvePlayer(a.doc, args[0])
		if pa == nil {
			fail("player %q not found", args[0])
		}
		pb := resolvePlayer(a.doc, args[1])
		if pb == nil {
			fail("player %q not found", args[1])
		}

		m, err := a.doc.RecordMatch(matchInputFromFlags(pa.ID, pb.ID))
		if err != nil {
			fail("%v", err)
		}
		a.finishMutation(cmd.Context())

		fmt.Printf("%s %s %d–%d %s (race to %d)\n", ui.RenderPass("✓"),
			ui.RenderAccent(pa.Name), m.FramesA, m.FramesB, ui.RenderAccent(pb.Name), m.RaceTo)
		fmt.Printf("  Winner: %s\n", a.doc.PlayerName(m.WinnerID))
	},
}

var (
	matchListPlayer string
	matchListFrom   string
	matchListTo     string
)

var matchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List matches, newest first",
	Long: `List recorded matches. --from and --to accept ISO dates (2026-08-01)
or natural phrases like "last monday"; --to is inclusive of the whole day.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		filters := league.DefaultFilters()
		if matchListPlayer != "" {
			p := resolvePlayer(a.doc, matchListPlayer)
			if p == nil {
				fail("player %q not found", matchListPlayer)
			}
			filters.PlayerID = p.ID
		}
		var err error
		if filters.From, err = parseDateFlag(matchListFrom); err != nil {
			fail("--from: %v", err)
		}
		if filters.To, err = parseDateFlag(matchListTo); err != nil {
			fail("--to: %v", err)
		}

		matches := a.doc.FilteredMatches(filters)
		if len(matches) == 0 {
			fmt.Println("No matches found.")
			return
		}

		fmt.Printf("%s (%d)\n", ui.RenderAccent("Matches"), len(matches))
		for _, m := range matches {
			winner := ""
			if m.WinnerID == m.PlayerAID {
				winner = "◀"
			} else if m.WinnerID == m.PlayerBID {
				winner = "▶"
			}
			fmt.Printf("  %s  %s %d–%d %s %s\n",
				ui.Muted(m.Date.Format("2006-01-02")),
				a.doc.PlayerName(m.PlayerAID), m.FramesA, m.FramesB,
				a.doc.PlayerName(m.PlayerBID), ui.RenderPass(winner))
			if meta := matchMeta(m); meta != "" {
				fmt.Printf("      %s\n", ui.Muted(meta))
			}
		}
	},
}

var matchClearYes bool

var matchClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded matches",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		n := len(a.doc.Matches)
		if n == 0 {
			fmt.Println("No matches to clear.")
			return
		}
		if !matchClearYes && !confirm(fmt.Sprintf("Delete all %d matches?", n)) {
			fmt.Println("Aborted.")
			return
		}

		a.doc.ClearMatches()
		a.finishMutation(cmd.Context())
		fmt.Printf("%s Cleared %d matches\n", ui.RenderPass("✓"), n)
	},
}

// matchMeta renders the secondary line for a listed match: the outcome
// tag and note joined when both are present.
func matchMeta(m *league.Match) string {
	switch {
	case m.Outcome != "" && m.Note != "":
		return m.Outcome + " · " + m.Note
	case m.Outcome != "":
		return m.Outcome
	default:
		return m.Note
	}
}

// parseDateFlag turns a flag value into a YYYY-MM-DD filter string.
// ISO dates pass through; anything else goes through natural language
// parsing ("yesterday", "last monday").
func parseDateFlag(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01-02", value); err == nil {
		return value, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, err := w.Parse(value, time.Now())
	if err != nil || r == nil {
		return "", fmt.Errorf("unrecognized date %q", value)
	}
	return r.Time.Format("2006-01-02"), nil
}

func init() {
	matchRecordCmd.Flags().IntVar(&matchRaceTo, "race-to", 5, "frames needed to win (1-9)")
	matchRecordCmd.Flags().IntVar(&matchFramesA, "frames-a", 0, "frames won by player A")
	matchRecordCmd.Flags().IntVar(&matchFramesB, "frames-b", 0, "frames won by player B")
	matchRecordCmd.Flags().StringVar(&matchOutcome, "outcome", "", `how the match ended ("clearance", "foul", ...)`)
	matchRecordCmd.Flags().StringVar(&matchNote, "note", "", "optional note")
	matchRecordCmd.Flags().StringVar(&matchBreaker, "breaker", "", `who broke first: "A" or "B"`)

	matchListCmd.Flags().StringVar(&matchListPlayer, "player", "", "only matches involving this player")
	matchListCmd.Flags().StringVar(&matchListFrom, "from", "", "earliest date")
	matchListCmd.Flags().StringVar(&matchListTo, "to", "", "latest date (inclusive)")

	matchClearCmd.Flags().BoolVarP(&matchClearYes, "yes", "y", false, "skip confirmation")

	matchCmd.AddCommand(matchRecordCmd, matchListCmd, matchClearCmd)
	rootCmd.AddCommand(matchCmd)
}
