package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dosada05/competition-engine/models"
	"github.com/Dosada05/competition-engine/repositories"
	"github.com/Dosada05/competition-engine/standings"
	"github.com/Dosada05/competition-engine/storage"
)

// EventPublisher pushes engine events to live viewers of a competition.
type EventPublisher interface {
	Publish(competitionID int, eventType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(int, string, interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// BracketArchiver stores the final state of a decided competition.
type BracketArchiver interface {
	Archive(ctx context.Context, doc *storage.BracketArchive) (string, error)
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// loadCompetition reads a competition through store, optionally locking it.
func loadCompetition(ctx context.Context, store repositories.Store, id int, forUpdate bool) (*models.Competition, error) {
	var (
		c   *models.Competition
		err error
	)
	if forUpdate {
		c, err = store.Competitions().GetForUpdate(ctx, id)
	} else {
		c, err = store.Competitions().GetByID(ctx, id)
	}
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return c, nil
}

// computeLeagueTable ranks a round-robin competition from the completed
// matches visible through store.
func computeLeagueTable(ctx context.Context, store repositories.Store, c *models.Competition) ([]models.StandingsRow, error) {
	if c.Format != models.FormatRoundRobin {
		return nil, ErrUnsupportedFormat
	}
	settings, err := c.RoundRobinSettings()
	if err != nil {
		return nil, err
	}

	confirmed := models.ParticipantStatusConfirmed
	participants, err := store.Participants().ListByCompetition(ctx, c.ID, &confirmed)
	if err != nil {
		return nil, err
	}
	completed := models.MatchStatusCompleted
	matches, err := store.Matches().ListByCompetition(ctx, c.ID, repositories.ListMatchesFilter{Status: &completed})
	if err != nil {
		return nil, err
	}

	entrants := make([]standings.Entrant, 0, len(participants))
	for _, p := range participants {
		entrants = append(entrants, standings.Entrant{ClubID: p.ClubID, Seed: models.IntPtr(p.SeedNumber)})
	}
	return standings.Compute(matches, entrants, settings.ScoringRule()), nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

type actorContextKey struct{}

// WithActor records the operator on whose behalf result calls on ctx run.
func WithActor(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, actorContextKey{}, userID)
}

func actorFromContext(ctx context.Context) *int {
	userID, ok := ctx.Value(actorContextKey{}).(int)
	if !ok {
		return nil
	}
	return &userID
}

// actorAttr is empty, and dropped by slog, when ctx carries no actor.
func actorAttr(actor *int) slog.Attr {
	if actor == nil {
		return slog.Attr{}
	}
	return slog.Int("actor_user_id", *actor)
}
