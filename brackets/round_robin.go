package brackets

import (
	"context"
	"fmt"
	"sort"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket schedules a league with the circle method: every club meets
// every other club once per leg, at most once per round. With an odd number
// of clubs one club rests each round. The second leg repeats the first with
// home and away swapped.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	ordered, err := orderBySeed(params.Participants)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	legs := params.NumberOfLegs
	if legs != 2 {
		legs = 1
	}

	// nil marks the resting slot when the number of clubs is odd.
	circle := make([]*SeededParticipant, 0, len(ordered)+1)
	for i := range ordered {
		circle = append(circle, &ordered[i])
	}
	if len(circle)%2 == 1 {
		circle = append(circle, nil)
	}

	size := len(circle)
	roundsPerLeg := size - 1
	matches := make([]*BracketMatch, 0, legs*roundsPerLeg*size/2)

	for r := 0; r < roundsPerLeg; r++ {
		order := 0
		for i := 0; i < size/2; i++ {
			home, away := circle[i], circle[size-1-i]
			if home == nil || away == nil {
				continue
			}
			// Alternate the fixed club between home and away.
			if i == 0 && r%2 == 1 {
				home, away = away, home
			}
			order++
			for leg := 1; leg <= legs; leg++ {
				h, a := home, away
				if leg == 2 {
					h, a = away, home
				}
				round := r + 1 + (leg-1)*roundsPerLeg
				matches = append(matches, &BracketMatch{
					UID:          fmt.Sprintf("RR%dM%d", round, order),
					Round:        round,
					OrderInRound: order,
					HomeClubID:   intPtr(h.ClubID),
					AwayClubID:   intPtr(a.ClubID),
					HomeSeed:     intPtr(h.Seed),
					AwaySeed:     intPtr(a.Seed),
				})
			}
		}

		// Rotate every slot but the first.
		last := circle[size-1]
		copy(circle[2:], circle[1:size-1])
		circle[1] = last
	}

	sortByRound(matches)
	return matches, nil
}

func sortByRound(matches []*BracketMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Round != matches[j].Round {
			return matches[i].Round < matches[j].Round
		}
		return matches[i].OrderInRound < matches[j].OrderInRound
	})
}

func intPtr(v int) *int {
	return &v
}
