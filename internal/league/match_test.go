package league

import (
	"errors"
	"testing"
)

func TestMatchInputValidate(t *testing.T) {
	cases := []struct {
		name string
		in   MatchInput
		want error
	}{
		{
			name: "valid race to 5",
			in:   MatchInput{PlayerAID: "a", PlayerBID: "b", RaceTo: 5, FramesA: 5, FramesB: 3},
			want: nil,
		},
		{
			name: "both at race target",
			in:   MatchInput{PlayerAID: "a", PlayerBID: "b", RaceTo: 5, FramesA: 5, FramesB: 5},
			want: ErrNoWinner,
		},
		{
			name: "overshoot past target",
			in:   MatchInput{PlayerAID: "a", PlayerBID: "b", RaceTo: 5, FramesA: 6, FramesB: 2},
			want: ErrNoWinner,
		},
		{
			name: "neither reaches target",
			in:   MatchInput{PlayerAID: "a", PlayerBID: "b", RaceTo: 5, FramesA: 4, FramesB: 3},
			want: ErrNoWinner,
		},
		{
			name: "same player",
			in:   MatchInput{PlayerAID: "a", PlayerBID: "a", RaceTo: 5, FramesA: 5, FramesB: 0},
			want: ErrSamePlayer,
		},
		{
			name: "missing player",
			in:   MatchInput{PlayerAID: "", PlayerBID: "b", RaceTo: 5, FramesA: 5, FramesB: 0},
			want: ErrMissingPlayer,
		},
		{
			name: "race to zero",
			in:   MatchInput{PlayerAID: "a", PlayerBID: "b", RaceTo: 0, FramesA: 0, FramesB: 0},
			want: ErrRaceToRange,
		},
		{
			name: "race to ten",
			in:   MatchInput{PlayerAID: "a", PlayerBID: "b", RaceTo: 10, FramesA: 10, FramesB: 0},
			want: ErrRaceToRange,
		},
		{
			name: "negative frames",
			in:   MatchInput{PlayerAID: "a", PlayerBID: "b", RaceTo: 5, FramesA: 5, FramesB: -1},
			want: ErrNegativeFrames,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.want == nil && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestWinnerDerivation(t *testing.T) {
	doc := NewDocument()
	a, _ := doc.AddPlayer("Alex", "")
	b, _ := doc.AddPlayer("Bea", "")

	m, err := doc.RecordMatch(&MatchInput{
		PlayerAID: a.ID, PlayerBID: b.ID,
		RaceTo: 5, FramesA: 5, FramesB: 3,
	})
	if err != nil {
		t.Fatalf("RecordMatch failed: %v", err)
	}
	if m.WinnerID != a.ID {
		t.Errorf("expected winner %s, got %s", a.ID, m.WinnerID)
	}

	m2, err := doc.RecordMatch(&MatchInput{
		PlayerAID: a.ID, PlayerBID: b.ID,
		RaceTo: 3, FramesA: 1, FramesB: 3,
	})
	if err != nil {
		t.Fatalf("RecordMatch failed: %v", err)
	}
	if m2.WinnerID != b.ID {
		t.Errorf("expected winner %s, got %s", b.ID, m2.WinnerID)
	}

	// History is newest-first.
	if doc.Matches[0].ID != m2.ID {
		t.Error("expected newest match first in history")
	}
}
