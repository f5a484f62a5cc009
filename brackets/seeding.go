package brackets

import (
	"fmt"
	"sort"
)

// RoundsFor returns ceil(log2(n)), the number of rounds an n-club
// single-elimination bracket needs.
func RoundsFor(n int) int {
	rounds := 0
	for (1 << rounds) < n {
		rounds++
	}
	return rounds
}

// SeedOrder returns the slot layout of a bracket of the given size (a power of
// two): element i is the seed rank placed in slot i. Built by recursive
// halving, so for 4 slots the layout is 1,4,2,3 and round-one pairs are (1,4)
// and (2,3). Seeds 1 and 2 always sit in opposite halves.
func SeedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		width := len(order) * 2
		next := make([]int, 0, width)
		for _, s := range order {
			next = append(next, s, width+1-s)
		}
		order = next
	}
	return order
}

// FirstMeetingRound returns the play-order round (1 = first round) in which
// the clubs in slots a and b can first meet.
func FirstMeetingRound(a, b int) int {
	round := 1
	for a/2 != b/2 {
		a /= 2
		b /= 2
		round++
	}
	return round
}

// orderBySeed validates the entry list and returns it sorted by seed.
func orderBySeed(participants []SeededParticipant) ([]SeededParticipant, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughParticipants, len(participants))
	}

	seenSeeds := make(map[int]int, len(participants))
	seenClubs := make(map[int]struct{}, len(participants))
	for _, p := range participants {
		if p.Seed <= 0 {
			return nil, fmt.Errorf("%w: club %d has seed %d", ErrInvalidSeed, p.ClubID, p.Seed)
		}
		if other, ok := seenSeeds[p.Seed]; ok {
			return nil, fmt.Errorf("%w: seed %d (clubs %d and %d)", ErrDuplicateSeed, p.Seed, other, p.ClubID)
		}
		if _, ok := seenClubs[p.ClubID]; ok {
			return nil, fmt.Errorf("%w: club %d", ErrDuplicateParticipant, p.ClubID)
		}
		seenSeeds[p.Seed] = p.ClubID
		seenClubs[p.ClubID] = struct{}{}
	}

	ordered := make([]SeededParticipant, len(participants))
	copy(ordered, participants)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Seed < ordered[j].Seed
	})
	return ordered, nil
}
