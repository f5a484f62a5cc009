package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/competition-engine/brackets"
	"github.com/Dosada05/competition-engine/metrics"
	"github.com/Dosada05/competition-engine/models"
	"github.com/Dosada05/competition-engine/repositories"
)

type BuildOptions struct {
	ConsolationMatch bool `json:"consolation_match"`
}

type BracketService interface {
	// BuildBracket creates the whole single-elimination graph for the given
	// seeded clubs in one transaction.
	BuildBracket(ctx context.Context, competitionID int, participants []brackets.SeededParticipant, opts BuildOptions) (*models.BracketGraph, error)
	// BuildBracketFromRegistrations seeds the bracket with the confirmed participants.
	BuildBracketFromRegistrations(ctx context.Context, competitionID int, opts BuildOptions) (*models.BracketGraph, error)
	// GenerateFixtures schedules a round-robin competition.
	GenerateFixtures(ctx context.Context, competitionID int) ([]*models.Match, error)
}

type bracketService struct {
	store     repositories.Store
	publisher EventPublisher
	metrics   metrics.Metrics
	logger    *slog.Logger
}

func NewBracketService(
	store repositories.Store,
	publisher EventPublisher,
	m metrics.Metrics,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		store:     store,
		publisher: publisherOrNoop(publisher),
		metrics:   m,
		logger:    loggerOrDefault(logger),
	}
}

type entrantSource func(ctx context.Context, tx repositories.Store) ([]brackets.SeededParticipant, error)

func (s *bracketService) BuildBracket(ctx context.Context, competitionID int, participants []brackets.SeededParticipant, opts BuildOptions) (*models.BracketGraph, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w: at least 2 participants required, got %d", ErrInvalidParticipantCount, len(participants))
	}
	return s.build(ctx, competitionID, opts, func(context.Context, repositories.Store) ([]brackets.SeededParticipant, error) {
		return participants, nil
	})
}

func (s *bracketService) BuildBracketFromRegistrations(ctx context.Context, competitionID int, opts BuildOptions) (*models.BracketGraph, error) {
	return s.build(ctx, competitionID, opts, confirmedEntrants(competitionID))
}

func confirmedEntrants(competitionID int) entrantSource {
	return func(ctx context.Context, tx repositories.Store) ([]brackets.SeededParticipant, error) {
		confirmed := models.ParticipantStatusConfirmed
		registrations, err := tx.Participants().ListByCompetition(ctx, competitionID, &confirmed)
		if err != nil {
			return nil, fmt.Errorf("failed to list confirmed participants for competition %d: %w", competitionID, err)
		}
		seeded := make([]brackets.SeededParticipant, 0, len(registrations))
		for _, p := range registrations {
			seeded = append(seeded, brackets.SeededParticipant{ClubID: p.ClubID, Seed: p.SeedNumber})
		}
		return seeded, nil
	}
}

func (s *bracketService) build(ctx context.Context, competitionID int, opts BuildOptions, entrants entrantSource) (*models.BracketGraph, error) {
	var graph *models.BracketGraph

	err := s.store.RunInTx(ctx, func(tx repositories.Store) error {
		competition, err := loadCompetition(ctx, tx, competitionID, true)
		if err != nil {
			return err
		}
		if !competition.IsElimination() {
			return fmt.Errorf("%w: competition %d uses format %q", ErrUnsupportedFormat, competitionID, competition.Format)
		}

		existing, err := tx.Matches().CountByCompetition(ctx, competitionID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: competition %d already has %d matches", ErrBracketAlreadyBuilt, competitionID, existing)
		}

		participants, err := entrants(ctx, tx)
		if err != nil {
			return err
		}
		if err := checkCapacity(competition, len(participants)); err != nil {
			return err
		}

		generated, err := brackets.NewSingleEliminationGenerator().GenerateBracket(ctx, brackets.GenerateBracketParams{
			CompetitionID:    competitionID,
			Participants:     participants,
			ConsolationMatch: opts.ConsolationMatch,
		})
		if err != nil {
			return mapGeneratorError(err)
		}

		created, err := persistGenerated(ctx, tx, competitionID, generated)
		if err != nil {
			return err
		}
		if err := tx.Competitions().UpdateStatus(ctx, competitionID, models.CompetitionStatusInProgress); err != nil {
			return fmt.Errorf("failed to start competition %d: %w", competitionID, err)
		}

		graph = models.NewBracketGraph(competitionID, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncBracketsBuilt(string(models.FormatSingleElimination))
	s.logger.Info("bracket built",
		slog.Int("competition_id", competitionID),
		slog.Int("rounds", graph.Rounds),
		slog.Int("matches", len(graph.Matches)),
		slog.Bool("consolation_match", graph.ConsolationMatchID != nil))
	s.publisher.Publish(competitionID, brackets.MessageBracketBuilt, graph)

	return graph, nil
}

func (s *bracketService) GenerateFixtures(ctx context.Context, competitionID int) ([]*models.Match, error) {
	var created []*models.Match

	err := s.store.RunInTx(ctx, func(tx repositories.Store) error {
		competition, err := loadCompetition(ctx, tx, competitionID, true)
		if err != nil {
			return err
		}
		if competition.Format != models.FormatRoundRobin {
			return fmt.Errorf("%w: competition %d uses format %q", ErrUnsupportedFormat, competitionID, competition.Format)
		}

		existing, err := tx.Matches().CountByCompetition(ctx, competitionID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: competition %d already has %d matches", ErrScheduleAlreadyGenerated, competitionID, existing)
		}

		settings, err := competition.RoundRobinSettings()
		if err != nil {
			return fmt.Errorf("invalid round robin settings for competition %d: %w", competitionID, err)
		}

		participants, err := confirmedEntrants(competitionID)(ctx, tx)
		if err != nil {
			return err
		}
		if err := checkCapacity(competition, len(participants)); err != nil {
			return err
		}

		generated, err := brackets.NewRoundRobinGenerator().GenerateBracket(ctx, brackets.GenerateBracketParams{
			CompetitionID: competitionID,
			Participants:  participants,
			NumberOfLegs:  settings.NumberOfRounds,
		})
		if err != nil {
			return mapGeneratorError(err)
		}

		created, err = persistGenerated(ctx, tx, competitionID, generated)
		if err != nil {
			return err
		}
		return tx.Competitions().UpdateStatus(ctx, competitionID, models.CompetitionStatusInProgress)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncBracketsBuilt(string(models.FormatRoundRobin))
	s.logger.Info("league fixtures generated",
		slog.Int("competition_id", competitionID),
		slog.Int("matches", len(created)))
	s.publisher.Publish(competitionID, brackets.MessageFixturesGenerated, created)

	return created, nil
}

func checkCapacity(c *models.Competition, n int) error {
	if n < 2 {
		return fmt.Errorf("%w: at least 2 participants required, got %d", ErrInvalidParticipantCount, n)
	}
	if c.MaxParticipants > 0 && n > c.MaxParticipants {
		return fmt.Errorf("%w: %d participants exceed the limit of %d", ErrInvalidParticipantCount, n, c.MaxParticipants)
	}
	return nil
}

// persistGenerated stores planned matches in two passes: every match is
// created first, then NextMatchUID and ConsolationMatchUID are resolved to
// the database IDs.
func persistGenerated(ctx context.Context, tx repositories.Store, competitionID int, generated []*brackets.BracketMatch) ([]*models.Match, error) {
	byUID := make(map[string]*models.Match, len(generated))
	created := make([]*models.Match, 0, len(generated))

	// ПЕРВЫЙ ПРОХОД: создаем все матчи
	for i, bm := range generated {
		m := &models.Match{
			CompetitionID: competitionID,
			MatchNumber:   i + 1,
			HomeClubID:    bm.HomeClubID,
			AwayClubID:    bm.AwayClubID,
			HomeSeed:      bm.HomeSeed,
			AwaySeed:      bm.AwaySeed,
			WinnerClubID:  bm.WinnerClubID,
			IsBye:         bm.IsBye,
			IsConsolation: bm.IsConsolation,
			Status:        models.MatchStatusScheduled,
		}
		if bm.RoundNumber > 0 {
			m.RoundNumber = models.IntPtr(bm.RoundNumber)
			m.BracketPosition = models.IntPtr(bm.OrderInRound)
		} else {
			m.Round = models.IntPtr(bm.Round)
		}
		// A walkover is decided the moment it is created.
		if bm.IsBye && bm.WinnerClubID != nil {
			m.Status = models.MatchStatusCompleted
		}

		if err := tx.Matches().Create(ctx, m); err != nil {
			return nil, fmt.Errorf("failed to create match %s: %w", bm.UID, err)
		}
		byUID[bm.UID] = m
		created = append(created, m)
	}

	// ВТОРОЙ ПРОХОД: связываем матчи
	for _, bm := range generated {
		if bm.NextMatchUID == nil && bm.ConsolationMatchUID == nil {
			continue
		}
		m := byUID[bm.UID]
		if bm.NextMatchUID != nil {
			next, ok := byUID[*bm.NextMatchUID]
			if !ok {
				return nil, fmt.Errorf("match %s links to unknown match %s", bm.UID, *bm.NextMatchUID)
			}
			m.NextMatchID = models.IntPtr(next.ID)
		}
		if bm.ConsolationMatchUID != nil {
			consolation, ok := byUID[*bm.ConsolationMatchUID]
			if !ok {
				return nil, fmt.Errorf("match %s links to unknown consolation match %s", bm.UID, *bm.ConsolationMatchUID)
			}
			m.ConsolationMatchID = models.IntPtr(consolation.ID)
		}
		if err := tx.Matches().UpdateLinks(ctx, m.ID, m.NextMatchID, m.ConsolationMatchID); err != nil {
			return nil, fmt.Errorf("failed to link match %s: %w", bm.UID, err)
		}
	}

	return created, nil
}
