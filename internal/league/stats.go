package league

import "sort"

// HeadToHead is a win/loss record against a single opponent.
type HeadToHead struct {
	Wins   int
	Losses int
}

// PlayerStats is the aggregate record for one player across all matches.
type PlayerStats struct {
	Matches       int
	Wins          int
	Losses        int
	FramesFor     int
	FramesAgainst int
	WinPct        int
	FrameDiff     int

	// OutcomeWins and OutcomeLosses tally the free-text outcome tag per
	// result ("8-ball clearance" etc).
	OutcomeWins   map[string]int
	OutcomeLosses map[string]int

	// Opponents maps opponent player ID to the head-to-head record.
	Opponents map[string]*HeadToHead
}

func newPlayerStats() *PlayerStats {
	return &PlayerStats{
		OutcomeWins:   map[string]int{},
		OutcomeLosses: map[string]int{},
		Opponents:     map[string]*HeadToHead{},
	}
}

// FavouriteWin returns the most common winning outcome tag and its count.
// Ties break alphabetically so output is stable.
func (s *PlayerStats) FavouriteWin() (string, int) {
	best, count := "", 0
	keys := make([]string, 0, len(s.OutcomeWins))
	for k := range s.OutcomeWins {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s.OutcomeWins[k] > count {
			best, count = k, s.OutcomeWins[k]
		}
	}
	return best, count
}

// ComputeStats aggregates per-player statistics over the whole match
// history. Matches referencing players no longer in the roster still
// contribute to the surviving side's totals.
func ComputeStats(d *Document) map[string]*PlayerStats {
	stats := make(map[string]*PlayerStats, len(d.Players))
	for _, p := range d.Players {
		stats[p.ID] = newPlayerStats()
	}

	get := func(id string) *PlayerStats {
		if s, ok := stats[id]; ok {
			return s
		}
		// Dangling reference: keep a throwaway record so the loop
		// below stays uniform without polluting the result map.
		return newPlayerStats()
	}

	for _, m := range d.Matches {
		a, b := get(m.PlayerAID), get(m.PlayerBID)

		a.Matches++
		b.Matches++
		a.FramesFor += m.FramesA
		a.FramesAgainst += m.FramesB
		b.FramesFor += m.FramesB
		b.FramesAgainst += m.FramesA

		winner, loser := a, b
		if m.WinnerID == m.PlayerBID {
			winner, loser = b, a
		}
		winner.Wins++
		loser.Losses++
		if m.Outcome != "" {
			winner.OutcomeWins[m.Outcome]++
			loser.OutcomeLosses[m.Outcome]++
		}

		recordHeadToHead(a, m.PlayerBID, m.WinnerID == m.PlayerAID)
		recordHeadToHead(b, m.PlayerAID, m.WinnerID == m.PlayerBID)
	}

	for _, s := range stats {
		if s.Matches > 0 {
			s.WinPct = int(float64(s.Wins)/float64(s.Matches)*100 + 0.5)
		}
		s.FrameDiff = s.FramesFor - s.FramesAgainst
	}
	return stats
}

func recordHeadToHead(s *PlayerStats, opponentID string, won bool) {
	rec, ok := s.Opponents[opponentID]
	if !ok {
		rec = &HeadToHead{}
		s.Opponents[opponentID] = rec
	}
	if won {
		rec.Wins++
	} else {
		rec.Losses++
	}
}
