package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dosada05/competition-engine/brackets"
	"github.com/Dosada05/competition-engine/cache"
	"github.com/Dosada05/competition-engine/metrics"
	"github.com/Dosada05/competition-engine/models"
	"github.com/Dosada05/competition-engine/repositories"
	"github.com/Dosada05/competition-engine/storage"
)

type publishedEvent struct {
	CompetitionID int
	Type          string
	Payload       interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(competitionID int, eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{CompetitionID: competitionID, Type: eventType, Payload: payload})
}

func (p *recordingPublisher) Count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

var competitionSeq atomic.Int64

type testEnv struct {
	store     repositories.Store
	memory    *repositories.MemoryStore
	metrics   *metrics.Mock
	cache     cache.StandingsCache
	publisher *recordingPublisher
	uploader  *storage.MemoryUploader

	brackets     BracketService
	results      ResultService
	standings    StandingsService
	competitions CompetitionService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	memory := repositories.NewMemoryStore()
	return newTestEnvWithStore(t, memory, memory)
}

// newTestEnvWithStore wires the services on store; memory is the store
// underneath it, used for direct assertions.
func newTestEnvWithStore(t *testing.T, store repositories.Store, memory *repositories.MemoryStore) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     store,
		memory:    memory,
		metrics:   metrics.NewMock(),
		cache:     cache.NewMemoryStandingsCache(),
		publisher: &recordingPublisher{},
		uploader:  storage.NewMemoryUploader("https://cdn.example.com"),
	}
	logger := discardLogger()
	directory := NewClubDirectory(store, env.uploader)

	env.brackets = NewBracketService(store, env.publisher, env.metrics, logger)
	env.results = NewResultService(store, env.cache, env.publisher, storage.NewBracketArchiver(env.uploader), env.metrics, logger)
	env.standings = NewStandingsService(store, env.cache, directory, env.metrics, logger)
	env.competitions = NewCompetitionService(store, directory, logger)
	return env
}

func (e *testEnv) createCompetition(t *testing.T, format models.CompetitionFormat, settings *models.RoundRobinSettings) *models.Competition {
	t.Helper()
	c, err := e.competitions.CreateCompetition(context.Background(), CreateCompetitionInput{
		Name:     fmt.Sprintf("Competition %d", competitionSeq.Add(1)),
		Format:   format,
		Settings: settings,
	})
	require.NoError(t, err)
	return c
}

// createClubs creates n clubs named "Club 1".."Club n" and returns their IDs.
func (e *testEnv) createClubs(t *testing.T, n int) []int {
	t.Helper()
	ids := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		club, err := e.competitions.CreateClub(context.Background(), CreateClubInput{Name: fmt.Sprintf("Club %d", i)})
		require.NoError(t, err)
		ids = append(ids, club.ID)
	}
	return ids
}

// seeded gives clubIDs[i] seed i+1.
func seeded(clubIDs []int) []brackets.SeededParticipant {
	out := make([]brackets.SeededParticipant, 0, len(clubIDs))
	for i, id := range clubIDs {
		out = append(out, brackets.SeededParticipant{ClubID: id, Seed: i + 1})
	}
	return out
}

func (e *testEnv) buildBracket(t *testing.T, n int, consolation bool) (*models.Competition, []int, *models.BracketGraph) {
	t.Helper()
	c := e.createCompetition(t, models.FormatSingleElimination, nil)
	clubs := e.createClubs(t, n)
	graph, err := e.brackets.BuildBracket(context.Background(), c.ID, seeded(clubs), BuildOptions{ConsolationMatch: consolation})
	require.NoError(t, err)
	return c, clubs, graph
}

func (e *testEnv) match(t *testing.T, id int) *models.Match {
	t.Helper()
	m, err := e.memory.Matches().GetByID(context.Background(), id)
	require.NoError(t, err)
	return m
}

func (e *testEnv) matchAt(t *testing.T, competitionID, roundNumber, position int) *models.Match {
	t.Helper()
	matches, err := e.memory.Matches().ListByCompetition(context.Background(), competitionID, repositories.ListMatchesFilter{BracketOnly: true})
	require.NoError(t, err)
	m := models.NewBracketGraph(competitionID, matches).MatchAt(roundNumber, position)
	require.NotNil(t, m, "no match at round %d position %d", roundNumber, position)
	return m
}

func (e *testEnv) competition(t *testing.T, id int) *models.Competition {
	t.Helper()
	c, err := e.memory.Competitions().GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (e *testEnv) record(t *testing.T, matchID, home, away int) *ResultUpdate {
	t.Helper()
	update, err := e.results.RecordResult(context.Background(), matchID, Score(home, away))
	require.NoError(t, err)
	return update
}

var errInjected = errors.New("injected failure")

// faultyStore fails match writes for one match ID inside transactions.
type faultyStore struct {
	repositories.Store
	failMatchID int
	failLinks   bool
}

func (s *faultyStore) Matches() repositories.MatchRepository {
	return &faultyMatches{MatchRepository: s.Store.Matches(), store: s}
}

func (s *faultyStore) RunInTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.Store.RunInTx(ctx, func(tx repositories.Store) error {
		return fn(&faultyStore{Store: tx, failMatchID: s.failMatchID, failLinks: s.failLinks})
	})
}

type faultyMatches struct {
	repositories.MatchRepository
	store *faultyStore
}

func (r *faultyMatches) Update(ctx context.Context, m *models.Match) error {
	if m.ID == r.store.failMatchID {
		return errInjected
	}
	return r.MatchRepository.Update(ctx, m)
}

func (r *faultyMatches) UpdateLinks(ctx context.Context, matchID int, next, consolation *int) error {
	if r.store.failLinks {
		return errInjected
	}
	return r.MatchRepository.UpdateLinks(ctx, matchID, next, consolation)
}
