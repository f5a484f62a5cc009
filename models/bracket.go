package models

// BracketGraph is the persisted result of a bracket build: an arena of matches
// addressed by ID, linked through NextMatchID and ConsolationMatchID.
type BracketGraph struct {
	CompetitionID      int      `json:"competition_id"`
	Rounds             int      `json:"rounds"`
	FinalMatchID       int      `json:"final_match_id"`
	ConsolationMatchID *int     `json:"consolation_match_id,omitempty"`
	Matches            []*Match `json:"matches"`
}

// MatchByID returns the match with the given ID, or nil.
func (g *BracketGraph) MatchByID(id int) *Match {
	for _, m := range g.Matches {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// MatchAt returns the bracket match at (roundNumber, position) outside the
// consolation match, or nil.
func (g *BracketGraph) MatchAt(roundNumber, position int) *Match {
	for _, m := range g.Matches {
		if m.IsConsolation || m.RoundNumber == nil || m.BracketPosition == nil {
			continue
		}
		if *m.RoundNumber == roundNumber && *m.BracketPosition == position {
			return m
		}
	}
	return nil
}

// NewBracketGraph indexes the bracket matches of a competition. League
// fixtures in matches are ignored.
func NewBracketGraph(competitionID int, matches []*Match) *BracketGraph {
	g := &BracketGraph{CompetitionID: competitionID, Matches: make([]*Match, 0, len(matches))}
	for _, m := range matches {
		if !m.IsBracketMatch() {
			continue
		}
		g.Matches = append(g.Matches, m)
		if *m.RoundNumber > g.Rounds {
			g.Rounds = *m.RoundNumber
		}
		switch {
		case m.IsConsolation:
			id := m.ID
			g.ConsolationMatchID = &id
		case m.NextMatchID == nil:
			g.FinalMatchID = m.ID
		}
	}
	return g
}
