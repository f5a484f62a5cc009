package brackets

import (
	"context"
	"errors"
)

var (
	ErrNotEnoughParticipants  = errors.New("not enough participants (minimum 2 required)")
	ErrInvalidSeed            = errors.New("seed number must be a positive integer")
	ErrDuplicateSeed          = errors.New("seed number used by more than one participant")
	ErrDuplicateParticipant   = errors.New("club listed more than once")
	ErrConsolationUnavailable = errors.New("consolation match requires two decisive semifinals")
)

// SeededParticipant is a club entering the draw with its seed.
type SeededParticipant struct {
	ClubID int `json:"club_id"`
	Seed   int `json:"seed"`
}

type GenerateBracketParams struct {
	CompetitionID    int
	Participants     []SeededParticipant
	ConsolationMatch bool
	NumberOfLegs     int
}

// BracketMatch is a planned match before it is persisted. Links between
// planned matches are expressed through UIDs and resolved to database IDs
// by the caller once every match has been created.
type BracketMatch struct {
	UID          string
	Round        int // play order, 1 = first round
	RoundNumber  int // bracket depth, 1 = final; 0 for league fixtures
	OrderInRound int // 1-based bracket position

	HomeClubID *int
	AwayClubID *int
	HomeSeed   *int
	AwaySeed   *int

	NextMatchUID        *string
	ConsolationMatchUID *string

	IsBye         bool
	IsConsolation bool
	WinnerClubID  *int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}
