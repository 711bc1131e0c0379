package league

import (
	"errors"
	"strings"
	"time"
)

// Filters is device-local match history filtering state. It is persisted
// locally but always reset to defaults in the portable form of a document.
type Filters struct {
	PlayerID string `json:"playerId"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// DefaultFilters returns the filter defaults used by portable documents.
func DefaultFilters() Filters {
	return Filters{PlayerID: "all"}
}

// Document is the league document: the unit of cross-device
// synchronization. SelectedPlayerID and Filters are ephemeral UI state and
// never travel: the portable projection resets them to defaults.
//
// UpdatedAt is a logical revision marker in Unix milliseconds, set to
// "now" on every local mutation that should trigger a sync. Conflict
// resolution between devices is last-writer-wins on this value alone.
type Document struct {
	Players          []*Player `json:"players"`
	Matches          []*Match  `json:"matches"`
	SelectedPlayerID *string   `json:"selectedPlayerId"`
	Filters          Filters   `json:"filters"`
	UpdatedAt        int64     `json:"updatedAt,omitempty"`
}

// Player lifecycle errors.
var (
	ErrDuplicateName  = errors.New("that player name already exists")
	ErrEmptyName      = errors.New("player name is required")
	ErrPlayerCap      = errors.New("league already has 20 active players")
	ErrPlayerNotFound = errors.New("player not found")
)

// NewDocument returns an empty document with default filters.
func NewDocument() *Document {
	return &Document{
		Players:   []*Player{},
		Matches:   []*Match{},
		Filters:   DefaultFilters(),
		UpdatedAt: time.Now().UnixMilli(),
	}
}

// Touch advances the revision marker to now. Every mutating operation
// calls this; pulls from a remote never do.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UnixMilli()
}

// Empty reports whether the document has any content worth pushing.
func (d *Document) Empty() bool {
	return len(d.Players) == 0 && len(d.Matches) == 0
}

// ActivePlayers returns players eligible for new-match selection.
func (d *Document) ActivePlayers() []*Player {
	active := make([]*Player, 0, len(d.Players))
	for _, p := range d.Players {
		if p.Active {
			active = append(active, p)
		}
	}
	return active
}

// Player returns the player with the given ID, or nil.
func (d *Document) Player(id string) *Player {
	for _, p := range d.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerName renders a player reference for display. Dangling references
// left behind by a deleted player render as "Deleted player".
func (d *Document) PlayerName(id string) string {
	p := d.Player(id)
	if p == nil {
		return "Deleted player"
	}
	return p.Label()
}

// AddPlayer appends a new player. Names are compared case-insensitively
// against every player, archived ones included, and the active-player
// count is capped at MaxActivePlayers.
func (d *Document) AddPlayer(name, nickname string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	for _, p := range d.Players {
		if strings.EqualFold(p.Name, name) {
			return nil, ErrDuplicateName
		}
	}
	if len(d.ActivePlayers()) >= MaxActivePlayers {
		return nil, ErrPlayerCap
	}
	player := NewPlayer(name, nickname)
	d.Players = append(d.Players, player)
	d.Touch()
	return player, nil
}

// RemovePlayer deletes a player outright when no matches reference them,
// and archives them otherwise so past results stay intact. Returns true
// when the player was archived rather than deleted.
func (d *Document) RemovePlayer(id string) (archived bool, err error) {
	player := d.Player(id)
	if player == nil {
		return false, ErrPlayerNotFound
	}

	hasMatches := false
	for _, m := range d.Matches {
		if m.PlayerAID == id || m.PlayerBID == id {
			hasMatches = true
			break
		}
	}

	if hasMatches {
		now := time.Now().UTC()
		player.Active = false
		player.ArchivedAt = &now
		archived = true
	} else {
		kept := d.Players[:0]
		for _, p := range d.Players {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		d.Players = kept
	}

	if d.SelectedPlayerID != nil && *d.SelectedPlayerID == id {
		d.SelectedPlayerID = nil
	}
	d.Touch()
	return archived, nil
}

// RecordMatch validates the input, resolves both players against the
// active roster, and prepends the match (history is newest-first).
func (d *Document) RecordMatch(in *MatchInput) (*Match, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	for _, id := range []string{in.PlayerAID, in.PlayerBID} {
		p := d.Player(id)
		if p == nil || !p.Active {
			return nil, ErrUnknownPlayer
		}
	}
	match := newMatch(in)
	d.Matches = append([]*Match{match}, d.Matches...)
	d.Touch()
	return match, nil
}

// ClearMatches removes every recorded match.
func (d *Document) ClearMatches() {
	d.Matches = []*Match{}
	d.Touch()
}

// Reset wipes players and matches.
func (d *Document) Reset() {
	d.Players = []*Player{}
	d.Matches = []*Match{}
	d.SelectedPlayerID = nil
	d.Touch()
}

// FilteredMatches applies the given filters to the match history. Date
// bounds are inclusive; the "to" bound covers the whole day.
func (d *Document) FilteredMatches(f Filters) []*Match {
	out := make([]*Match, 0, len(d.Matches))
	var from, to time.Time
	if f.From != "" {
		from, _ = time.Parse("2006-01-02", f.From)
	}
	if f.To != "" {
		if t, err := time.Parse("2006-01-02", f.To); err == nil {
			to = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	for _, m := range d.Matches {
		if f.PlayerID != "" && f.PlayerID != "all" &&
			m.PlayerAID != f.PlayerID && m.PlayerBID != f.PlayerID {
			continue
		}
		if !from.IsZero() && m.Date.Before(from) {
			continue
		}
		if !to.IsZero() && m.Date.After(to) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Portable returns the cross-device projection of the document: players
// and matches carried over, selected player and filters reset to defaults.
// The revision marker is preserved.
func (d *Document) Portable() *Document {
	return &Document{
		Players:          append([]*Player{}, d.Players...),
		Matches:          append([]*Match{}, d.Matches...),
		SelectedPlayerID: nil,
		Filters:          DefaultFilters(),
		UpdatedAt:        d.UpdatedAt,
	}
}

// Replace performs the all-or-nothing replacement used when a remote
// document wins reconciliation: players, matches and revision marker are
// taken from the incoming document while device-local UI state resets.
// Callers must have validated the incoming document first.
func (d *Document) Replace(incoming *Document) {
	d.Players = incoming.Players
	d.Matches = incoming.Matches
	d.SelectedPlayerID = nil
	d.Filters = DefaultFilters()
	if incoming.UpdatedAt != 0 {
		d.UpdatedAt = incoming.UpdatedAt
	} else {
		d.UpdatedAt = time.Now().UnixMilli()
	}
}
