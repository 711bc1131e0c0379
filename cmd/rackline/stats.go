package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/racklinehq/rackline/internal/league"
	"github.com/racklinehq/rackline/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:     "stats [player]",
	GroupID: "league",
	Short:   "Show standings or a single player's record",
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		stats := league.ComputeStats(a.doc)

		if len(args) == 1 {
			p := resolvePlayer(a.doc, args[0])
			if p == nil {
				fail("player %q not found", args[0])
			}
			printPlayerStats(a, p, stats[p.ID])
			return
		}

		printStandings(a, stats)
	},
}

func printStandings(a *app, stats map[string]*league.PlayerStats) {
	players := a.doc.ActivePlayers()
	if len(players) == 0 {
		fmt.Println("No players yet.")
		return
	}

	// Standings order: win percentage, then frame difference, then name.
	sort.SliceStable(players, func(i, j int) bool {
		si, sj := stats[players[i].ID], stats[players[j].ID]
		if si.WinPct != sj.WinPct {
			return si.WinPct > sj.WinPct
		}
		if si.FrameDiff != sj.FrameDiff {
			return si.FrameDiff > sj.FrameDiff
		}
		return players[i].Name < players[j].Name
	})

	fmt.Printf("%s\n", ui.RenderAccent("Standings"))
	fmt.Printf("  %-4s %-20s %5s %5s %5s %6s %6s\n", "#", "Player", "P", "W", "L", "Win%", "+/-")
	for i, p := range players {
		s := stats[p.ID]
		diff := fmt.Sprintf("%+d", s.FrameDiff)
		if s.FrameDiff == 0 {
			diff = "0"
		}
		fmt.Printf("  %-4d %-20s %5d %5d %5d %5d%% %6s\n",
			i+1, p.Name, s.Matches, s.Wins, s.Losses, s.WinPct, diff)
	}
}

func printPlayerStats(a *app, p *league.Player, s *league.PlayerStats) {
	fmt.Printf("%s\n", ui.RenderAccent(p.Label()))
	if s == nil || s.Matches == 0 {
		fmt.Println("  No matches recorded.")
		return
	}

	fmt.Printf("  Record:     %d–%d in %d matches (%d%%)\n", s.Wins, s.Losses, s.Matches, s.WinPct)
	fmt.Printf("  Frames:     %d–%d (%+d)\n", s.FramesFor, s.FramesAgainst, s.FrameDiff)
	if outcome, count := s.FavouriteWin(); outcome != "" {
		fmt.Printf("  Favourite win: %s (×%d)\n", outcome, count)
	}

	if len(s.Opponents) > 0 {
		// Most-played opponents first; names break ties.
		ids := make([]string, 0, len(s.Opponents))
		for id := range s.Opponents {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			hi, hj := s.Opponents[ids[i]], s.Opponents[ids[j]]
			gi, gj := hi.Wins+hi.Losses, hj.Wins+hj.Losses
			if gi != gj {
				return gi > gj
			}
			return a.doc.PlayerName(ids[i]) < a.doc.PlayerName(ids[j])
		})

		fmt.Printf("  %s\n", ui.Muted("Head to head:"))
		for _, id := range ids {
			h := s.Opponents[id]
			fmt.Printf("    %-20s %d–%d\n", a.doc.PlayerName(id), h.Wins, h.Losses)
		}
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
