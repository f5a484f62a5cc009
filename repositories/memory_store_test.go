package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/competition-engine/models"
)

func newCompetition(t *testing.T, store Store, name string) *models.Competition {
	t.Helper()
	c := &models.Competition{
		Name:   name,
		Type:   models.CompetitionTypeKnockout,
		Format: models.FormatSingleElimination,
		Status: models.CompetitionStatusScheduled,
	}
	require.NoError(t, store.Competitions().Create(context.Background(), c))
	return c
}

func bracketMatch(competitionID, roundNumber, position int) *models.Match {
	return &models.Match{
		CompetitionID:   competitionID,
		RoundNumber:     models.IntPtr(roundNumber),
		BracketPosition: models.IntPtr(position),
		Status:          models.MatchStatusScheduled,
	}
}

func TestMemoryStoreCompetitionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newCompetition(t, store, "Cup")
	assert.Equal(t, 1, c.ID)

	require.NoError(t, store.Competitions().UpdateStatus(ctx, c.ID, models.CompetitionStatusInProgress))
	require.NoError(t, store.Competitions().UpdatePlacings(ctx, c.ID, models.IntPtr(7), nil))

	got, err := store.Competitions().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CompetitionStatusInProgress, got.Status)
	assert.Equal(t, 7, *got.ChampionClubID)
	assert.Nil(t, got.ThirdPlaceClubID)

	_, err = store.Competitions().GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrCompetitionNotFound)
	assert.ErrorIs(t, store.Competitions().UpdateStatus(ctx, 99, models.CompetitionStatusCompleted), ErrCompetitionNotFound)

	dup := &models.Competition{Name: "Cup"}
	assert.ErrorIs(t, store.Competitions().Create(ctx, dup), ErrCompetitionNameConflict)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newCompetition(t, store, "Cup")

	m := bracketMatch(c.ID, 1, 1)
	require.NoError(t, store.Matches().Create(ctx, m))

	m.HomeClubID = models.IntPtr(5)
	got, err := store.Matches().GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.HomeClubID)

	*got.RoundNumber = 9
	again, err := store.Matches().GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, *again.RoundNumber)
}

func TestMemoryStoreMatchConstraints(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newCompetition(t, store, "Cup")

	require.NoError(t, store.Matches().Create(ctx, bracketMatch(c.ID, 2, 1)))
	assert.ErrorIs(t, store.Matches().Create(ctx, bracketMatch(c.ID, 2, 1)), ErrMatchSlotConflict)
	assert.ErrorIs(t, store.Matches().Create(ctx, bracketMatch(c.ID+1, 2, 1)), ErrMatchCompetitionInvalid)

	linked := bracketMatch(c.ID, 2, 2)
	linked.NextMatchID = models.IntPtr(42)
	assert.ErrorIs(t, store.Matches().Create(ctx, linked), ErrMatchLinkInvalid)

	half := bracketMatch(c.ID, 3, 1)
	half.HomeScore = models.IntPtr(1)
	assert.Error(t, store.Matches().Create(ctx, half))

	// League fixtures have no bracket slot and never collide.
	for i := 0; i < 2; i++ {
		fixture := &models.Match{CompetitionID: c.ID, Round: models.IntPtr(1), Status: models.MatchStatusScheduled}
		require.NoError(t, store.Matches().Create(ctx, fixture))
	}

	count, err := store.Matches().CountByCompetition(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	bracket, err := store.Matches().ListByCompetition(ctx, c.ID, ListMatchesFilter{BracketOnly: true})
	require.NoError(t, err)
	assert.Len(t, bracket, 1)
}

func TestMemoryStoreUpdateAndLinks(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newCompetition(t, store, "Cup")

	final := bracketMatch(c.ID, 1, 1)
	semi := bracketMatch(c.ID, 2, 1)
	require.NoError(t, store.Matches().Create(ctx, final))
	require.NoError(t, store.Matches().Create(ctx, semi))
	require.NoError(t, store.Matches().UpdateLinks(ctx, semi.ID, models.IntPtr(final.ID), nil))
	assert.ErrorIs(t, store.Matches().UpdateLinks(ctx, semi.ID, models.IntPtr(100), nil), ErrMatchLinkInvalid)
	assert.ErrorIs(t, store.Matches().UpdateLinks(ctx, final.ID, models.IntPtr(semi.ID), nil), ErrMatchLinkInvalid,
		"a link must point toward the final")

	semi.HomeClubID = models.IntPtr(1)
	semi.AwayClubID = models.IntPtr(2)
	semi.HomeScore = models.IntPtr(2)
	semi.AwayScore = models.IntPtr(0)
	semi.WinnerClubID = models.IntPtr(1)
	semi.Status = models.MatchStatusCompleted
	require.NoError(t, store.Matches().Update(ctx, semi))

	got, err := store.Matches().GetByID(ctx, semi.ID)
	require.NoError(t, err)
	assert.Equal(t, final.ID, *got.NextMatchID)
	assert.Equal(t, 1, *got.WinnerClubID)
	assert.Equal(t, models.MatchStatusCompleted, got.Status)

	completed := models.MatchStatusCompleted
	done, err := store.Matches().ListByCompetition(ctx, c.ID, ListMatchesFilter{Status: &completed})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, semi.ID, done[0].ID)

	missing := &models.Match{ID: 404, Status: models.MatchStatusCompleted}
	assert.ErrorIs(t, store.Matches().Update(ctx, missing), ErrMatchNotFound)
}

func TestMemoryStoreLinksStayInsideCompetition(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cup := newCompetition(t, store, "Cup")
	other := newCompetition(t, store, "Shield")

	final := bracketMatch(cup.ID, 1, 1)
	semi := bracketMatch(cup.ID, 2, 1)
	sibling := bracketMatch(cup.ID, 2, 2)
	thirdPlace := bracketMatch(cup.ID, 1, 2)
	thirdPlace.IsConsolation = true
	foreignFinal := bracketMatch(other.ID, 1, 1)
	for _, m := range []*models.Match{final, thirdPlace, semi, sibling, foreignFinal} {
		require.NoError(t, store.Matches().Create(ctx, m))
	}

	tests := []struct {
		name        string
		matchID     int
		next        *int
		consolation *int
		wantErr     error
	}{
		{name: "next in an earlier round", matchID: semi.ID, next: models.IntPtr(final.ID)},
		{name: "consolation in round one", matchID: sibling.ID, next: models.IntPtr(final.ID), consolation: models.IntPtr(thirdPlace.ID)},
		{name: "next in another competition", matchID: semi.ID, next: models.IntPtr(foreignFinal.ID), wantErr: ErrMatchLinkInvalid},
		{name: "consolation in another competition", matchID: semi.ID, consolation: models.IntPtr(foreignFinal.ID), wantErr: ErrMatchLinkInvalid},
		{name: "next in the same round", matchID: semi.ID, next: models.IntPtr(sibling.ID), wantErr: ErrMatchLinkInvalid},
		{name: "next to itself", matchID: final.ID, next: models.IntPtr(final.ID), wantErr: ErrMatchLinkInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Matches().UpdateLinks(ctx, tt.matchID, tt.next, tt.consolation)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	crossing := bracketMatch(cup.ID, 3, 1)
	crossing.NextMatchID = models.IntPtr(foreignFinal.ID)
	assert.ErrorIs(t, store.Matches().Create(ctx, crossing), ErrMatchLinkInvalid)

	crossing.NextMatchID = models.IntPtr(semi.ID)
	require.NoError(t, store.Matches().Create(ctx, crossing))
}

func TestMemoryStoreParticipants(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newCompetition(t, store, "League")

	register := func(clubID, seed int, status models.ParticipantStatus) error {
		return store.Participants().Create(ctx, &models.Participant{
			CompetitionID: c.ID, ClubID: clubID, SeedNumber: seed, Status: status,
		})
	}
	require.NoError(t, register(30, 3, models.ParticipantStatusConfirmed))
	require.NoError(t, register(10, 1, models.ParticipantStatusConfirmed))
	require.NoError(t, register(20, 2, models.ParticipantStatusWithdrawn))
	assert.ErrorIs(t, register(10, 4, models.ParticipantStatusConfirmed), ErrParticipantConflict)
	assert.ErrorIs(t, register(40, 3, models.ParticipantStatusConfirmed), ErrParticipantSeedConflict)
	assert.ErrorIs(t, store.Participants().Create(ctx, &models.Participant{CompetitionID: 77, ClubID: 1, SeedNumber: 1}), ErrParticipantCompetitionInvalid)

	confirmed := models.ParticipantStatusConfirmed
	list, err := store.Participants().ListByCompetition(ctx, c.ID, &confirmed)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 10, list[0].ClubID)
	assert.Equal(t, 30, list[1].ClubID)

	all, err := store.Participants().ListByCompetition(ctx, c.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStoreClubs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, name := range []string{"Rovers", "United", "City"} {
		require.NoError(t, store.Clubs().Create(ctx, &models.Club{Name: name}))
	}
	assert.ErrorIs(t, store.Clubs().Create(ctx, &models.Club{Name: "City"}), ErrClubNameConflict)

	clubs, err := store.Clubs().ListByIDs(ctx, []int{3, 1, 9, 1})
	require.NoError(t, err)
	require.Len(t, clubs, 2)
	assert.Equal(t, "Rovers", clubs[0].Name)
	assert.Equal(t, "City", clubs[1].Name)

	_, err = store.Clubs().GetByID(ctx, 9)
	assert.ErrorIs(t, err, ErrClubNotFound)
}

func TestMemoryStoreRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newCompetition(t, store, "Cup")
	boom := errors.New("boom")

	err := store.RunInTx(ctx, func(tx Store) error {
		require.NoError(t, tx.Matches().Create(ctx, bracketMatch(c.ID, 1, 1)))
		require.NoError(t, tx.Competitions().UpdateStatus(ctx, c.ID, models.CompetitionStatusInProgress))

		// Inside the transaction the writes are visible.
		count, err := tx.Matches().CountByCompetition(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	count, err := store.Matches().CountByCompetition(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	got, err := store.Competitions().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CompetitionStatusScheduled, got.Status)
}

func TestMemoryStoreRollsBackOnCancel(t *testing.T) {
	store := NewMemoryStore()
	c := newCompetition(t, store, "Cup")
	ctx, cancel := context.WithCancel(context.Background())

	err := store.RunInTx(ctx, func(tx Store) error {
		if err := tx.Matches().Create(ctx, bracketMatch(c.ID, 1, 1)); err != nil {
			return err
		}
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	count, err := store.Matches().CountByCompetition(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryStoreRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newCompetition(t, store, "Cup")

	assert.Panics(t, func() {
		_ = store.RunInTx(ctx, func(tx Store) error {
			_ = tx.Matches().Create(ctx, bracketMatch(c.ID, 1, 1))
			panic("unexpected")
		})
	})

	count, err := store.Matches().CountByCompetition(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// The writer lock was released.
	require.NoError(t, store.Matches().Create(ctx, bracketMatch(c.ID, 1, 1)))
}

func TestMemoryStoreSerialisesWriters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newCompetition(t, store, "Cup")
	m := bracketMatch(c.ID, 1, 1)
	m.HomeScore = models.IntPtr(0)
	m.AwayScore = models.IntPtr(0)
	require.NoError(t, store.Matches().Create(ctx, m))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.RunInTx(ctx, func(tx Store) error {
				cur, err := tx.Matches().GetForUpdate(ctx, m.ID)
				if err != nil {
					return err
				}
				cur.HomeScore = models.IntPtr(*cur.HomeScore + 1)
				return tx.Matches().Update(ctx, cur)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Matches().GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, *got.HomeScore)
}
