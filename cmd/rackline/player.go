package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/racklinehq/rackline/internal/league"
	"github.com/racklinehq/rackline/internal/ui"
)

var playerCmd = &cobra.Command{
	Use:     "player",
	GroupID: "league",
	Short:   "Manage league players",
}

var playerAddNickname string

var playerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a player to the league",
	Long: `Add a player. Names are unique case-insensitively, including against
archived players. The league holds at most 20 active players; archiving
a player frees a slot.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		p, err := a.doc.AddPlayer(args[0], playerAddNickname)
		if err != nil {
			fail("%v", err)
		}
		a.finishMutation(cmd.Context())

		fmt.Printf("%s Added %s\n", ui.RenderPass("✓"), ui.RenderAccent(p.Label()))
		fmt.Printf("  %s\n", ui.Muted(p.ID))
	},
}

var playerListAll bool

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List players",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		players := a.doc.ActivePlayers()
		if playerListAll {
			players = a.doc.Players
		}
		if len(players) == 0 {
			fmt.Println("No players yet. Add one with: rackline player add <name>")
			return
		}

		active := len(a.doc.ActivePlayers())
		fmt.Printf("%s (%d/%d active)\n", ui.RenderAccent("Players"), active, league.MaxActivePlayers)
		for _, p := range players {
			marker := ui.RenderPass("●")
			if !p.Active {
				marker = ui.Muted("○")
			}
			fmt.Printf("  %s %s  %s\n", marker, p.Label(), ui.Muted(p.ID))
		}
	},
}

var playerRemoveYes bool

var playerRemoveCmd = &cobra.Command{
	Use:   "remove <id|name>",
	Short: "Remove a player",
	Long: `Remove a player. A player with recorded matches is archived so
history stays intact; a player with no matches is deleted outright.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := mustApp()
		defer a.Close()

		p := resolvePlayer(a.doc, args[0])
		if p == nil {
			fail("player %q not found", args[0])
		}

		if !playerRemoveYes && !confirm(fmt.Sprintf("Remove %s?", p.Label())) {
			fmt.Println("Aborted.")
			return
		}

		archived, err := a.doc.RemovePlayer(p.ID)
		if err != nil {
			fail("%v", err)
		}
		a.finishMutation(cmd.Context())

		if archived {
			fmt.Printf("%s Archived %s (has match history)\n", ui.RenderPass("✓"), p.Name)
		} else {
			fmt.Printf("%s Deleted %s\n", ui.RenderPass("✓"), p.Name)
		}
	},
}

// resolvePlayer finds a player by exact ID, then by case-insensitive
// name. Active players shadow archived ones on name lookup.
func resolvePlayer(doc *league.Document, ref string) *league.Player {
	if p := doc.Player(ref); p != nil {
		return p
	}
	var archived *league.Player
	for _, p := range doc.Players {
		if !strings.EqualFold(p.Name, ref) {
			continue
		}
		if p.Active {
			return p
		}
		if archived == nil {
			archived = p
		}
	}
	return archived
}

// confirm prompts for a yes/no answer, defaulting to no. A
// non-interactive session (piped stdin) answers no.
func confirm(title string) bool {
	var ok bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Value(&ok),
	))
	if err := form.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderWarn("Warning:"), err)
		return false
	}
	return ok
}

func init() {
	playerAddCmd.Flags().StringVar(&playerAddNickname, "nickname", "", "optional nickname")
	playerListCmd.Flags().BoolVar(&playerListAll, "all", false, "include archived players")
	playerRemoveCmd.Flags().BoolVarP(&playerRemoveYes, "yes", "y", false, "skip confirmation")

	playerCmd.AddCommand(playerAddCmd, playerListCmd, playerRemoveCmd)
	rootCmd.AddCommand(playerCmd)
}
