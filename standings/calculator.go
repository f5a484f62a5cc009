package standings

import (
	"sort"

	"github.com/Dosada05/competition-engine/models"
)

// Entrant is a club that belongs in the table even before it has played.
type Entrant struct {
	ClubID int
	Seed   *int
}

// Compute derives a ranked league table from a snapshot of matches.
// Only completed, scored matches between two clubs count; byes and
// cancelled or unplayed fixtures are ignored. Clubs that appear in a
// counted match without being listed as entrants are added with no seed.
//
// Rows are ordered by points, goal difference and goals for (all desc),
// then by a head-to-head mini-table among the clubs still level (points,
// then goal difference in those meetings), then seed asc with unseeded
// clubs last, then club ID asc. The order is total, so Rank is always
// the row's 1-based position.
func Compute(matches []*models.Match, entrants []Entrant, rule models.ScoringRule) []models.StandingsRow {
	index := make(map[int]*models.StandingsRow, len(entrants))
	row := func(clubID int) *models.StandingsRow {
		r, ok := index[clubID]
		if !ok {
			r = &models.StandingsRow{ClubID: clubID, HeadToHead: make(map[int]models.HeadToHeadRecord)}
			index[clubID] = r
		}
		return r
	}
	for _, e := range entrants {
		row(e.ClubID).Seed = e.Seed
	}

	counted := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if !counts(m) {
			continue
		}
		counted = append(counted, m)

		home, away := row(*m.HomeClubID), row(*m.AwayClubID)
		hs, as := *m.HomeScore, *m.AwayScore
		homePts, awayPts := award(hs, as, rule)

		apply(home, hs, as, homePts)
		apply(away, as, hs, awayPts)
		addHeadToHead(home, away.ClubID, hs, as, homePts)
		addHeadToHead(away, home.ClubID, as, hs, awayPts)
	}

	table := make([]*models.StandingsRow, 0, len(index))
	for _, r := range index {
		r.GoalDifference = r.GoalsFor - r.GoalsAgainst
		table = append(table, r)
	}

	sort.Slice(table, func(i, j int) bool {
		if c := compareRecord(table[i], table[j]); c != 0 {
			return c < 0
		}
		return compareFallback(table[i], table[j]) < 0
	})

	// Resolve each group that is level on the overall record with the
	// mini-table of the matches played inside the group.
	for start := 0; start < len(table); {
		end := start + 1
		for end < len(table) && compareRecord(table[start], table[end]) == 0 {
			end++
		}
		if end-start > 1 {
			resolveGroup(table[start:end], counted, rule)
		}
		start = end
	}

	out := make([]models.StandingsRow, len(table))
	for i, r := range table {
		r.Rank = i + 1
		out[i] = *r
	}
	return out
}

func counts(m *models.Match) bool {
	return m.Status == models.MatchStatusCompleted &&
		!m.IsBye &&
		m.HomeClubID != nil && m.AwayClubID != nil &&
		m.HasScore()
}

func award(own, other int, rule models.ScoringRule) (int, int) {
	switch {
	case own > other:
		return rule.Win, rule.Loss
	case own < other:
		return rule.Loss, rule.Win
	default:
		return rule.Draw, rule.Draw
	}
}

func apply(r *models.StandingsRow, goalsFor, goalsAgainst, points int) {
	r.Played++
	r.GoalsFor += goalsFor
	r.GoalsAgainst += goalsAgainst
	r.Points += points
	switch {
	case goalsFor > goalsAgainst:
		r.Won++
	case goalsFor < goalsAgainst:
		r.Lost++
	default:
		r.Drawn++
	}
}

func addHeadToHead(r *models.StandingsRow, opponent, goalsFor, goalsAgainst, points int) {
	h := r.HeadToHead[opponent]
	h.Played++
	h.Points += points
	h.GoalsFor += goalsFor
	h.GoalsAgainst += goalsAgainst
	r.HeadToHead[opponent] = h
}

// compareRecord orders by points, goal difference and goals for.
func compareRecord(a, b *models.StandingsRow) int {
	if a.Points != b.Points {
		return b.Points - a.Points
	}
	if a.GoalDifference != b.GoalDifference {
		return b.GoalDifference - a.GoalDifference
	}
	return b.GoalsFor - a.GoalsFor
}

// compareFallback orders by seed (unseeded last) and then club ID.
func compareFallback(a, b *models.StandingsRow) int {
	switch {
	case a.Seed != nil && b.Seed != nil && *a.Seed != *b.Seed:
		return *a.Seed - *b.Seed
	case a.Seed != nil && b.Seed == nil:
		return -1
	case a.Seed == nil && b.Seed != nil:
		return 1
	}
	return a.ClubID - b.ClubID
}

type miniRecord struct {
	points int
	diff   int
}

func resolveGroup(group []*models.StandingsRow, matches []*models.Match, rule models.ScoringRule) {
	members := make(map[int]bool, len(group))
	for _, r := range group {
		members[r.ClubID] = true
	}

	mini := make(map[int]*miniRecord, len(group))
	for _, r := range group {
		mini[r.ClubID] = &miniRecord{}
	}
	for _, m := range matches {
		h, a := *m.HomeClubID, *m.AwayClubID
		if !members[h] || !members[a] {
			continue
		}
		hs, as := *m.HomeScore, *m.AwayScore
		hp, ap := award(hs, as, rule)
		mini[h].points += hp
		mini[h].diff += hs - as
		mini[a].points += ap
		mini[a].diff += as - hs
	}

	sort.SliceStable(group, func(i, j int) bool {
		mi, mj := mini[group[i].ClubID], mini[group[j].ClubID]
		if mi.points != mj.points {
			return mi.points > mj.points
		}
		if mi.diff != mj.diff {
			return mi.diff > mj.diff
		}
		return compareFallback(group[i], group[j]) < 0
	})
}
