package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// Side is the slot a club occupies in a match.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Match belongs to exactly one competition. League matches carry Round;
// bracket matches carry RoundNumber (1 = final) and BracketPosition (1-based).
type Match struct {
	ID            int `json:"id" db:"id"`
	CompetitionID int `json:"competition_id" db:"competition_id"`

	Round           *int `json:"round,omitempty" db:"round"`
	RoundNumber     *int `json:"round_number,omitempty" db:"round_number"`
	BracketPosition *int `json:"bracket_position,omitempty" db:"bracket_position"`
	MatchNumber     int  `json:"match_number" db:"match_number"`

	HomeClubID *int `json:"home_club_id" db:"home_club_id"`
	AwayClubID *int `json:"away_club_id" db:"away_club_id"`
	HomeScore  *int `json:"home_score" db:"home_score"`
	AwayScore  *int `json:"away_score" db:"away_score"`
	HomeSeed   *int `json:"home_seed,omitempty" db:"home_seed"`
	AwaySeed   *int `json:"away_seed,omitempty" db:"away_seed"`

	NextMatchID          *int `json:"next_match_id,omitempty" db:"next_match_id"`
	ConsolationMatchID   *int `json:"consolation_match_id,omitempty" db:"consolation_match_id"`
	WinnerClubID         *int `json:"winner_club_id,omitempty" db:"winner_club_id"`
	ShootoutWinnerClubID *int `json:"shootout_winner_club_id,omitempty" db:"shootout_winner_club_id"`

	IsBye         bool        `json:"is_bye" db:"is_bye"`
	IsConsolation bool        `json:"is_consolation" db:"is_consolation"`
	Status        MatchStatus `json:"status" db:"status"`
	ScheduledAt   *time.Time  `json:"scheduled_at,omitempty" db:"scheduled_at"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// IsBracketMatch reports whether the match is part of an elimination bracket.
func (m *Match) IsBracketMatch() bool {
	return m.RoundNumber != nil
}

// IsFinal reports whether the match is the root of the winner chain.
func (m *Match) IsFinal() bool {
	return m.IsBracketMatch() && !m.IsConsolation && m.NextMatchID == nil
}

// HasScore reports whether both scores are set.
func (m *Match) HasScore() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// HasConsistentScore is false when exactly one of the two scores is set.
func (m *Match) HasConsistentScore() bool {
	return (m.HomeScore == nil) == (m.AwayScore == nil)
}

// IsPlayed reports whether the match has a recorded, decisive outcome
// (a walkover counts as played).
func (m *Match) IsPlayed() bool {
	return m.Status == MatchStatusCompleted
}

// ClubOn returns the club occupying the given side.
func (m *Match) ClubOn(side Side) *int {
	if side == SideHome {
		return m.HomeClubID
	}
	return m.AwayClubID
}

// SetClub places clubID (possibly nil) on the given side.
func (m *Match) SetClub(side Side, clubID *int) {
	if side == SideHome {
		m.HomeClubID = clubID
		return
	}
	m.AwayClubID = clubID
}

// SetSeed places seed (possibly nil) on the given side.
func (m *Match) SetSeed(side Side, seed *int) {
	if side == SideHome {
		m.HomeSeed = seed
		return
	}
	m.AwaySeed = seed
}

// LoserClubID returns the club that did not win, if the match is decided.
func (m *Match) LoserClubID() *int {
	if m.WinnerClubID == nil || m.HomeClubID == nil || m.AwayClubID == nil {
		return nil
	}
	if *m.WinnerClubID == *m.HomeClubID {
		return m.AwayClubID
	}
	return m.HomeClubID
}

// SlotInParent returns the side of the next match fed by a match at this bracket
// position: odd positions feed the home side, even positions the away side.
func SlotInParent(bracketPosition int) Side {
	if bracketPosition%2 == 1 {
		return SideHome
	}
	return SideAway
}

// ParentPosition returns the bracket position of the match fed by bracketPosition.
func ParentPosition(bracketPosition int) int {
	return (bracketPosition + 1) / 2
}

// IntPtr returns a pointer to a copy of v.
func IntPtr(v int) *int {
	return &v
}

// EqualIntPtr compares two optional ints by value.
func EqualIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
