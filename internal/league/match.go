package league

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Frame score bounds for quick entry.
const (
	MinRaceTo = 1
	MaxRaceTo = 9
	MaxFrames = 9
)

// Match is a recorded result between two players. Matches are immutable
// once recorded; the only removal path is a bulk clear. Player references
// are validated when the match is recorded and again on import, not
// continuously: a later-deleted player leaves a dangling reference that is
// rendered as "Deleted player".
type Match struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	PlayerAID string    `json:"playerAId"`
	PlayerBID string    `json:"playerBId"`
	RaceTo    int       `json:"raceTo"`
	FramesA   int       `json:"framesA"`
	FramesB   int       `json:"framesB"`
	Outcome   string    `json:"outcome,omitempty"`
	Note      string    `json:"note,omitempty"`

	// Breaker marks which side broke: "A", "B", or empty when unknown.
	Breaker string `json:"breaker,omitempty"`

	// WinnerID is derived at record time: the side whose frame count
	// equals RaceTo.
	WinnerID string `json:"winnerId"`
}

// Match validation errors.
var (
	ErrSamePlayer     = errors.New("please choose two different players")
	ErrMissingPlayer  = errors.New("please choose two players")
	ErrUnknownPlayer  = errors.New("player not found or archived")
	ErrRaceToRange    = errors.New("race to must be between 1 and 9 frames")
	ErrNegativeFrames = errors.New("frame scores cannot be negative")
	ErrFramesRange    = errors.New("frames cannot exceed 9 for quick entry")
	ErrNoWinner       = errors.New("one player must reach the race-to value, the other must be lower")
)

// MatchInput carries the fields needed to record a match.
type MatchInput struct {
	PlayerAID string
	PlayerBID string
	RaceTo    int
	FramesA   int
	FramesB   int
	Outcome   string
	Note      string
	Breaker   string
}

// Validate checks the structural rules for a match result. Exactly one
// side must have reached RaceTo while the other is strictly below it;
// overshooting the target is as invalid as a tie.
func (in *MatchInput) Validate() error {
	if in.PlayerAID == "" || in.PlayerBID == "" {
		return ErrMissingPlayer
	}
	if in.PlayerAID == in.PlayerBID {
		return ErrSamePlayer
	}
	if in.RaceTo < MinRaceTo || in.RaceTo > MaxRaceTo {
		return ErrRaceToRange
	}
	if in.FramesA < 0 || in.FramesB < 0 {
		return ErrNegativeFrames
	}
	if in.FramesA > MaxFrames || in.FramesB > MaxFrames {
		return ErrFramesRange
	}
	winningA := in.FramesA == in.RaceTo && in.FramesB < in.RaceTo
	winningB := in.FramesB == in.RaceTo && in.FramesA < in.RaceTo
	if !winningA && !winningB {
		return ErrNoWinner
	}
	return nil
}

// newMatch derives the winner and stamps the match. Callers must have
// validated the input first.
func newMatch(in *MatchInput) *Match {
	winnerID := in.PlayerBID
	if in.FramesA > in.FramesB {
		winnerID = in.PlayerAID
	}
	return &Match{
		ID:        uuid.NewString(),
		Date:      time.Now().UTC(),
		PlayerAID: in.PlayerAID,
		PlayerBID: in.PlayerBID,
		RaceTo:    in.RaceTo,
		FramesA:   in.FramesA,
		FramesB:   in.FramesB,
		Outcome:   in.Outcome,
		Note:      in.Note,
		Breaker:   in.Breaker,
		WinnerID:  winnerID,
	}
}
