package brackets

import (
	"context"
	"fmt"
	"sort"
)

// node is one slot feeding a match: a seeded club, the winner of an earlier
// match, or an empty (bye) slot.
type node struct {
	clubID *int
	seed   *int
	source *BracketMatch
	empty  bool
}

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket lays the seeded clubs out with SeedOrder, pads the draw with
// byes up to the next power of two and builds every round down to the final.
// Bye matches are resolved on the spot and their winner is written into the
// next round.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	ordered, err := orderBySeed(params.Participants)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := len(ordered)
	numRounds := RoundsFor(n)
	sizeOfFullBracket := 1 << numRounds

	currentRoundNodes := make([]*node, sizeOfFullBracket)
	for slot, rank := range SeedOrder(sizeOfFullBracket) {
		if rank > n {
			currentRoundNodes[slot] = &node{empty: true}
			continue
		}
		p := ordered[rank-1]
		clubID, seed := p.ClubID, p.Seed
		currentRoundNodes[slot] = &node{clubID: &clubID, seed: &seed}
	}

	allGeneratedMatches := make([]*BracketMatch, 0, sizeOfFullBracket)

	for r := 1; r <= numRounds; r++ {
		roundNumber := numRounds - r + 1
		nextRoundNodes := make([]*node, 0, len(currentRoundNodes)/2)

		for i := 0; i < len(currentRoundNodes); i += 2 {
			home, away := currentRoundNodes[i], currentRoundNodes[i+1]
			bm := &BracketMatch{
				UID:          fmt.Sprintf("R%dM%d", roundNumber, i/2+1),
				Round:        r,
				RoundNumber:  roundNumber,
				OrderInRound: i/2 + 1,
				HomeClubID:   home.clubID,
				AwayClubID:   away.clubID,
				HomeSeed:     home.seed,
				AwaySeed:     away.seed,
			}
			home.linkTo(bm)
			away.linkTo(bm)

			next := &node{source: bm}
			switch {
			case home.empty && away.empty:
				bm.IsBye = true
				next.empty = true
			case home.empty || away.empty:
				bm.IsBye = true
				present := home
				if home.empty {
					present = away
				}
				// A bye whose present side is still undecided resolves when
				// that side's feeder is played.
				if present.clubID != nil {
					bm.WinnerClubID = present.clubID
					next.clubID = present.clubID
				}
				next.seed = present.seed
			}

			allGeneratedMatches = append(allGeneratedMatches, bm)
			nextRoundNodes = append(nextRoundNodes, next)
		}
		currentRoundNodes = nextRoundNodes
	}

	if len(currentRoundNodes) != 1 {
		return nil, fmt.Errorf("internal error: expected a single final, got %d roots", len(currentRoundNodes))
	}

	if params.ConsolationMatch {
		consolation, err := attachConsolation(allGeneratedMatches, numRounds)
		if err != nil {
			return nil, err
		}
		allGeneratedMatches = append(allGeneratedMatches, consolation)
	}

	sort.SliceStable(allGeneratedMatches, func(i, j int) bool {
		if allGeneratedMatches[i].Round != allGeneratedMatches[j].Round {
			return allGeneratedMatches[i].Round < allGeneratedMatches[j].Round
		}
		return allGeneratedMatches[i].OrderInRound < allGeneratedMatches[j].OrderInRound
	})

	return allGeneratedMatches, nil
}

func (n *node) linkTo(parent *BracketMatch) {
	if n.source != nil {
		uid := parent.UID
		n.source.NextMatchUID = &uid
	}
}

// attachConsolation creates the third-place match fed by both semifinal losers.
func attachConsolation(matches []*BracketMatch, numRounds int) (*BracketMatch, error) {
	if numRounds < 2 {
		return nil, fmt.Errorf("%w: a %d-round bracket has no semifinals", ErrConsolationUnavailable, numRounds)
	}

	consolation := &BracketMatch{
		UID:           "C1",
		Round:         numRounds,
		RoundNumber:   1,
		OrderInRound:  2,
		IsConsolation: true,
	}
	for _, bm := range matches {
		if bm.RoundNumber != 2 {
			continue
		}
		if bm.IsBye {
			return nil, fmt.Errorf("%w: semifinal %s is a walkover", ErrConsolationUnavailable, bm.UID)
		}
		uid := consolation.UID
		bm.ConsolationMatchUID = &uid
	}
	return consolation, nil
}
