// Package league provides the data model for a pool league: players,
// recorded matches, the league document that is synchronized across
// devices, and the validation rules for externally-sourced documents.
package league

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxActivePlayers is the cap on active (non-archived) players in a league.
const MaxActivePlayers = 20

// Player is a league member. Archived players (Active=false) are retained
// so historical matches keep resolving, but are excluded from new-match
// selection and from the active-player cap.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname,omitempty"`

	// Active defaults to true when absent in stored or imported JSON.
	Active bool `json:"active"`

	CreatedAt  time.Time  `json:"createdAt"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
}

// UnmarshalJSON decodes a player, treating a missing "active" field as
// active. Documents written by older exports omit the field entirely.
func (p *Player) UnmarshalJSON(data []byte) error {
	type alias Player
	aux := struct {
		Active *bool `json:"active"`
		*alias
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Active = aux.Active == nil || *aux.Active
	return nil
}

// Label returns the display label for the player: name, with nickname in
// parentheses and an archived marker where applicable.
func (p *Player) Label() string {
	label := p.Name
	if p.Nickname != "" {
		label += " (" + p.Nickname + ")"
	}
	if !p.Active {
		label += " (archived)"
	}
	return label
}

// NewPlayer constructs a player with a fresh ID and trimmed fields.
func NewPlayer(name, nickname string) *Player {
	return &Player{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Nickname:  strings.TrimSpace(nickname),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
}
