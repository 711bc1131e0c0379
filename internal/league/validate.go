package league

import (
	"encoding/json"
	"errors"
)

// Validation errors for externally-sourced documents (remote pulls, file
// imports, share codes). These are surfaced to the user and never
// auto-retried.
var (
	// ErrInvalidFormat is returned when the input is not an object
	// carrying players and matches arrays.
	ErrInvalidFormat = errors.New("invalid backup format: players and matches arrays are required")

	// ErrTooManyPlayers is returned when the document exceeds the
	// active-player cap.
	ErrTooManyPlayers = errors.New("backup contains more than 20 players")

	// ErrPlayerIDs is returned when a player is missing an ID or two
	// players share one.
	ErrPlayerIDs = errors.New("player ids must be unique")
)

// Validate applies the acceptance rules for an externally-sourced
// document, in order:
//
//  1. players and matches must both be present (nil slices fail).
//  2. at most MaxActivePlayers players.
//  3. every player carries a non-empty, unique ID.
//
// The one permitted repair: matches referencing an unknown player ID are
// silently dropped rather than rejected. No other mutation occurs, and a
// rejected document is left untouched.
func Validate(doc *Document) error {
	if doc == nil || doc.Players == nil || doc.Matches == nil {
		return ErrInvalidFormat
	}
	if len(doc.Players) > MaxActivePlayers {
		return ErrTooManyPlayers
	}

	ids := make(map[string]struct{}, len(doc.Players))
	for _, p := range doc.Players {
		if p == nil || p.ID == "" {
			return ErrPlayerIDs
		}
		if _, dup := ids[p.ID]; dup {
			return ErrPlayerIDs
		}
		ids[p.ID] = struct{}{}
	}

	kept := doc.Matches[:0]
	for _, m := range doc.Matches {
		if m == nil {
			continue
		}
		if _, ok := ids[m.PlayerAID]; !ok {
			continue
		}
		if _, ok := ids[m.PlayerBID]; !ok {
			continue
		}
		kept = append(kept, m)
	}
	doc.Matches = kept

	return nil
}

// ParseDocument decodes raw JSON into a document and validates it. The
// players and matches fields must be JSON arrays; any other shape,
// including a bare scalar or a non-object payload, is ErrInvalidFormat.
func ParseDocument(data []byte) (*Document, error) {
	var probe struct {
		Players json.RawMessage `json:"players"`
		Matches json.RawMessage `json:"matches"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, ErrInvalidFormat
	}
	if !isJSONArray(probe.Players) || !isJSONArray(probe.Matches) {
		return nil, ErrInvalidFormat
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, ErrInvalidFormat
	}
	if doc.Players == nil {
		doc.Players = []*Player{}
	}
	if doc.Matches == nil {
		doc.Matches = []*Match{}
	}
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func isJSONArray(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
