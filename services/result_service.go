package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/competition-engine/brackets"
	"github.com/Dosada05/competition-engine/cache"
	"github.com/Dosada05/competition-engine/metrics"
	"github.com/Dosada05/competition-engine/models"
	"github.com/Dosada05/competition-engine/repositories"
	"github.com/Dosada05/competition-engine/storage"
)

// MatchResult is a reported final score. ShootoutWinnerClubID decides a
// drawn elimination match and must be empty otherwise.
type MatchResult struct {
	HomeScore            *int `json:"home_score"`
	AwayScore            *int `json:"away_score"`
	ShootoutWinnerClubID *int `json:"shootout_winner_club_id,omitempty"`
}

// Score builds a MatchResult without a shootout.
func Score(home, away int) MatchResult {
	return MatchResult{HomeScore: &home, AwayScore: &away}
}

// ResultUpdate describes what a result call changed.
type ResultUpdate struct {
	Match           *models.Match       `json:"match"`
	Affected        []*models.Match     `json:"affected,omitempty"`
	Competition     *models.Competition `json:"competition"`
	ChampionDecided bool                `json:"champion_decided"`
	// ActorUserID is the operator who made the change, when known.
	ActorUserID *int `json:"actor_user_id,omitempty"`
}

type ResultService interface {
	// RecordResult stores a final score and advances the winner. Recording
	// a played match again is a correction.
	RecordResult(ctx context.Context, matchID int, result MatchResult) (*ResultUpdate, error)
	// ResetResult clears a result and withdraws the clubs it advanced. With
	// cascade, played downstream matches are reset first; without it they
	// make the call fail with ErrPropagationConflict.
	ResetResult(ctx context.Context, matchID int, cascade bool) (*ResultUpdate, error)
}

type resultService struct {
	store     repositories.Store
	cache     cache.StandingsCache
	publisher EventPublisher
	archiver  BracketArchiver
	metrics   metrics.Metrics
	logger    *slog.Logger
}

// NewResultService wires the advancement engine. archiver may be nil.
func NewResultService(
	store repositories.Store,
	standingsCache cache.StandingsCache,
	publisher EventPublisher,
	archiver BracketArchiver,
	m metrics.Metrics,
	logger *slog.Logger,
) ResultService {
	if standingsCache == nil {
		standingsCache = cache.NewNoopStandingsCache()
	}
	return &resultService{
		store:     store,
		cache:     standingsCache,
		publisher: publisherOrNoop(publisher),
		archiver:  archiver,
		metrics:   m,
		logger:    loggerOrDefault(logger),
	}
}

func (s *resultService) RecordResult(ctx context.Context, matchID int, result MatchResult) (*ResultUpdate, error) {
	var (
		update  *ResultUpdate
		outcome string
	)

	err := s.store.RunInTx(ctx, func(tx repositories.Store) error {
		m, err := tx.Matches().GetForUpdate(ctx, matchID)
		if err != nil {
			return handleRepositoryError(err)
		}

		winner, err := validateResult(m, result)
		if err != nil {
			return fmt.Errorf("match %d: %w", matchID, err)
		}

		outcome = resultOutcome(m, result)
		m.HomeScore = models.IntPtr(*result.HomeScore)
		m.AwayScore = models.IntPtr(*result.AwayScore)
		m.WinnerClubID = winner
		m.ShootoutWinnerClubID = nil
		if *result.HomeScore == *result.AwayScore && winner != nil {
			m.ShootoutWinnerClubID = models.IntPtr(*winner)
		}
		m.Status = models.MatchStatusCompleted

		if err := tx.Matches().Update(ctx, m); err != nil {
			return fmt.Errorf("failed to save result of match %d: %w", matchID, err)
		}

		update = &ResultUpdate{Match: m}
		if m.IsBracketMatch() {
			if err := advance(ctx, tx, m, update); err != nil {
				return err
			}
		}
		return s.settleAfterResult(ctx, tx, m, update)
	})
	if err != nil {
		if errors.Is(err, ErrPropagationConflict) {
			s.metrics.IncPropagationConflicts()
			s.logger.Warn("result correction rejected", slog.Int("match_id", matchID), slog.Any("error", err))
		}
		return nil, err
	}

	update.ActorUserID = actorFromContext(ctx)
	s.metrics.IncResultsRecorded(outcome)
	s.logger.Info("match result recorded",
		slog.Int("match_id", matchID),
		slog.Int("competition_id", update.Match.CompetitionID),
		slog.String("outcome", outcome),
		slog.Int("affected_matches", len(update.Affected)),
		actorAttr(update.ActorUserID))
	s.afterCommit(ctx, update)

	return update, nil
}

// validateResult checks a result against the match and returns the winner,
// nil for a league draw.
func validateResult(m *models.Match, r MatchResult) (*int, error) {
	switch {
	case m.Status == models.MatchStatusCancelled:
		return nil, ErrMatchCancelled
	case m.IsBye:
		return nil, ErrMatchIsWalkover
	case m.HomeClubID == nil || m.AwayClubID == nil:
		return nil, ErrMatchNotReady
	case (r.HomeScore == nil) != (r.AwayScore == nil):
		return nil, ErrInconsistentScorePair
	case r.HomeScore == nil:
		return nil, fmt.Errorf("%w: both scores are required", ErrInvalidScore)
	case *r.HomeScore < 0 || *r.AwayScore < 0:
		return nil, ErrInvalidScore
	}

	home, away := *r.HomeScore, *r.AwayScore
	if home != away {
		if r.ShootoutWinnerClubID != nil {
			return nil, ErrInvalidShootoutWinner
		}
		if home > away {
			return models.IntPtr(*m.HomeClubID), nil
		}
		return models.IntPtr(*m.AwayClubID), nil
	}

	if !m.IsBracketMatch() {
		if r.ShootoutWinnerClubID != nil {
			return nil, ErrInvalidShootoutWinner
		}
		return nil, nil
	}
	if r.ShootoutWinnerClubID == nil {
		return nil, ErrDrawNotAllowed
	}
	sw := *r.ShootoutWinnerClubID
	if sw != *m.HomeClubID && sw != *m.AwayClubID {
		return nil, ErrInvalidShootoutWinner
	}
	return models.IntPtr(sw), nil
}

func resultOutcome(m *models.Match, r MatchResult) string {
	switch {
	case m.IsPlayed():
		return metrics.OutcomeCorrection
	case *r.HomeScore != *r.AwayScore:
		return metrics.OutcomeDecided
	case r.ShootoutWinnerClubID != nil:
		return metrics.OutcomeShootout
	}
	return metrics.OutcomeDraw
}

// advance writes the winner of m into its next match and, for a semifinal
// feeding a consolation match, the loser into the consolation match. Both
// use the side given by m's bracket position.
func advance(ctx context.Context, tx repositories.Store, m *models.Match, update *ResultUpdate) error {
	side := models.SlotInParent(*m.BracketPosition)

	if m.NextMatchID != nil {
		changed, err := fillSlot(ctx, tx, *m.NextMatchID, side, m.WinnerClubID, seedOf(m, m.WinnerClubID))
		if err != nil {
			return err
		}
		if changed != nil {
			update.Affected = append(update.Affected, changed)
		}
	}

	if m.ConsolationMatchID != nil {
		loser := m.LoserClubID()
		changed, err := fillSlot(ctx, tx, *m.ConsolationMatchID, side, loser, seedOf(m, loser))
		if err != nil {
			return err
		}
		if changed != nil {
			update.Affected = append(update.Affected, changed)
		}
	}
	return nil
}

// fillSlot places clubID on one side of the target match. It returns the
// target when it changed. A target that has been played with another club
// on that side is a conflict.
func fillSlot(ctx context.Context, tx repositories.Store, targetID int, side models.Side, clubID, seed *int) (*models.Match, error) {
	target, err := tx.Matches().GetForUpdate(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load downstream match %d: %w", targetID, handleRepositoryError(err))
	}
	if models.EqualIntPtr(target.ClubOn(side), clubID) {
		return nil, nil
	}
	if target.IsPlayed() {
		return nil, fmt.Errorf("%w: match %d already has a result", ErrPropagationConflict, targetID)
	}

	target.SetClub(side, clubID)
	target.SetSeed(side, seed)
	if err := tx.Matches().Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to advance club into match %d: %w", targetID, err)
	}
	return target, nil
}

func seedOf(m *models.Match, clubID *int) *int {
	switch {
	case clubID == nil:
		return nil
	case models.EqualIntPtr(m.HomeClubID, clubID):
		return m.HomeSeed
	case models.EqualIntPtr(m.AwayClubID, clubID):
		return m.AwaySeed
	}
	return nil
}

// settleAfterResult records placings once a deciding match is complete: the
// final names the champion, the consolation match the third place, and the
// last league fixture the table leader.
func (s *resultService) settleAfterResult(ctx context.Context, tx repositories.Store, m *models.Match, update *ResultUpdate) error {
	competition, err := loadCompetition(ctx, tx, m.CompetitionID, true)
	if err != nil {
		return err
	}

	switch {
	case m.IsBracketMatch() && m.IsConsolation:
		if err := tx.Competitions().UpdatePlacings(ctx, competition.ID, competition.ChampionClubID, m.WinnerClubID); err != nil {
			return err
		}

	case m.IsFinal():
		if err := tx.Competitions().UpdatePlacings(ctx, competition.ID, m.WinnerClubID, competition.ThirdPlaceClubID); err != nil {
			return err
		}
		if err := tx.Competitions().UpdateStatus(ctx, competition.ID, models.CompetitionStatusCompleted); err != nil {
			return err
		}
		update.ChampionDecided = true

	case !m.IsBracketMatch():
		scheduled := models.MatchStatusScheduled
		remaining, err := tx.Matches().ListByCompetition(ctx, competition.ID, repositories.ListMatchesFilter{Status: &scheduled})
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			table, err := computeLeagueTable(ctx, tx, competition)
			if err != nil {
				return err
			}
			if len(table) > 0 {
				if err := tx.Competitions().UpdatePlacings(ctx, competition.ID, models.IntPtr(table[0].ClubID), nil); err != nil {
					return err
				}
				if err := tx.Competitions().UpdateStatus(ctx, competition.ID, models.CompetitionStatusCompleted); err != nil {
					return err
				}
				update.ChampionDecided = true
			}
		}
	}

	update.Competition, err = loadCompetition(ctx, tx, competition.ID, false)
	return err
}

// resetState collects what a reset touched along the chain.
type resetState struct {
	cascade            bool
	affected           []*models.Match
	affectedIDs        map[int]bool
	finalCleared       bool
	consolationCleared bool
}

func (st *resetState) touch(m *models.Match) {
	if st.affectedIDs[m.ID] {
		return
	}
	st.affectedIDs[m.ID] = true
	st.affected = append(st.affected, m)
}

func (s *resultService) ResetResult(ctx context.Context, matchID int, cascade bool) (*ResultUpdate, error) {
	var (
		update  *ResultUpdate
		changed bool
	)

	err := s.store.RunInTx(ctx, func(tx repositories.Store) error {
		m, err := tx.Matches().GetForUpdate(ctx, matchID)
		if err != nil {
			return handleRepositoryError(err)
		}
		switch {
		case m.IsBye:
			return fmt.Errorf("match %d: %w", matchID, ErrMatchIsWalkover)
		case m.Status == models.MatchStatusCancelled:
			return fmt.Errorf("match %d: %w", matchID, ErrMatchCancelled)
		}

		changed = m.IsPlayed()
		st := &resetState{cascade: cascade, affectedIDs: map[int]bool{m.ID: true}}
		if err := resetMatch(ctx, tx, m, st); err != nil {
			return err
		}

		update = &ResultUpdate{Match: m, Affected: st.affected}
		return settleAfterReset(ctx, tx, m, st, update)
	})
	if err != nil {
		if errors.Is(err, ErrPropagationConflict) {
			s.metrics.IncPropagationConflicts()
		}
		return nil, err
	}

	update.ActorUserID = actorFromContext(ctx)
	if changed {
		s.metrics.IncResultsRecorded(metrics.OutcomeReset)
		s.logger.Info("match result reset",
			slog.Int("match_id", matchID),
			slog.Bool("cascade", cascade),
			slog.Int("affected_matches", len(update.Affected)),
			actorAttr(update.ActorUserID))
		s.afterCommit(ctx, update)
	}
	return update, nil
}

// resetMatch clears the result of m after withdrawing the clubs it sent
// downstream. Locks are taken upward, toward the final.
func resetMatch(ctx context.Context, tx repositories.Store, m *models.Match, st *resetState) error {
	if !m.IsPlayed() {
		return nil
	}

	if m.IsBracketMatch() {
		side := models.SlotInParent(*m.BracketPosition)
		if m.NextMatchID != nil {
			if err := withdraw(ctx, tx, *m.NextMatchID, side, m.WinnerClubID, st); err != nil {
				return err
			}
		}
		if m.ConsolationMatchID != nil {
			if err := withdraw(ctx, tx, *m.ConsolationMatchID, side, m.LoserClubID(), st); err != nil {
				return err
			}
		}
		if m.IsConsolation {
			st.consolationCleared = true
		} else if m.IsFinal() {
			st.finalCleared = true
		}
	}

	m.HomeScore = nil
	m.AwayScore = nil
	m.WinnerClubID = nil
	m.ShootoutWinnerClubID = nil
	m.Status = models.MatchStatusScheduled
	if err := tx.Matches().Update(ctx, m); err != nil {
		return fmt.Errorf("failed to reset match %d: %w", m.ID, err)
	}
	return nil
}

// withdraw removes clubID from one side of the target match, resetting the
// target first when it has been played and the reset cascades.
func withdraw(ctx context.Context, tx repositories.Store, targetID int, side models.Side, clubID *int, st *resetState) error {
	target, err := tx.Matches().GetForUpdate(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to load downstream match %d: %w", targetID, handleRepositoryError(err))
	}

	if target.IsPlayed() {
		if !st.cascade {
			return fmt.Errorf("%w: match %d already has a result", ErrPropagationConflict, targetID)
		}
		if err := resetMatch(ctx, tx, target, st); err != nil {
			return err
		}
		st.touch(target)
	}

	if clubID == nil || !models.EqualIntPtr(target.ClubOn(side), clubID) {
		return nil
	}
	target.SetClub(side, nil)
	target.SetSeed(side, nil)
	if err := tx.Matches().Update(ctx, target); err != nil {
		return fmt.Errorf("failed to withdraw club from match %d: %w", targetID, err)
	}
	st.touch(target)
	return nil
}

func settleAfterReset(ctx context.Context, tx repositories.Store, m *models.Match, st *resetState, update *ResultUpdate) error {
	competition, err := loadCompetition(ctx, tx, m.CompetitionID, true)
	if err != nil {
		return err
	}

	champion, third := competition.ChampionClubID, competition.ThirdPlaceClubID
	reopen := false
	switch {
	case m.IsBracketMatch():
		if st.finalCleared {
			champion = nil
			reopen = true
		}
		if st.consolationCleared {
			third = nil
		}
	case competition.Status == models.CompetitionStatusCompleted:
		champion = nil
		reopen = true
	}

	if !models.EqualIntPtr(champion, competition.ChampionClubID) || !models.EqualIntPtr(third, competition.ThirdPlaceClubID) {
		if err := tx.Competitions().UpdatePlacings(ctx, competition.ID, champion, third); err != nil {
			return err
		}
	}
	if reopen && competition.Status == models.CompetitionStatusCompleted {
		if err := tx.Competitions().UpdateStatus(ctx, competition.ID, models.CompetitionStatusInProgress); err != nil {
			return err
		}
	}

	update.Competition, err = loadCompetition(ctx, tx, competition.ID, false)
	return err
}

// afterCommit runs the side effects of a committed result: the standings
// cache is dropped, viewers are notified and a decided competition is archived.
func (s *resultService) afterCommit(ctx context.Context, update *ResultUpdate) {
	competitionID := update.Competition.ID

	// The result is committed; a cancelled request must not keep the old table cached.
	if err := s.cache.Invalidate(context.WithoutCancel(ctx), competitionID); err != nil {
		s.logger.Warn("failed to invalidate standings cache",
			slog.Int("competition_id", competitionID), slog.Any("error", err))
	}

	s.publisher.Publish(competitionID, brackets.MessageMatchUpdated, update)

	if !update.ChampionDecided {
		return
	}
	s.logger.Info("competition completed",
		slog.Int("competition_id", competitionID),
		slog.Any("champion_club_id", update.Competition.ChampionClubID))
	s.publisher.Publish(competitionID, brackets.MessageCompetitionFinished, update.Competition)
	s.archive(ctx, update.Competition)
}

// archive uploads the final state of the competition. Failures are logged
// and never reach the caller.
func (s *resultService) archive(ctx context.Context, competition *models.Competition) {
	if s.archiver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	doc := &storage.BracketArchive{Competition: competition}
	if competition.IsElimination() {
		matches, err := s.store.Matches().ListByCompetition(ctx, competition.ID, repositories.ListMatchesFilter{BracketOnly: true})
		if err != nil {
			s.logger.Error("failed to load bracket for archive", slog.Int("competition_id", competition.ID), slog.Any("error", err))
			return
		}
		doc.Bracket = models.NewBracketGraph(competition.ID, matches)
	} else {
		table, err := computeLeagueTable(ctx, s.store, competition)
		if err != nil {
			s.logger.Error("failed to compute standings for archive", slog.Int("competition_id", competition.ID), slog.Any("error", err))
			return
		}
		doc.Standings = table
	}

	location, err := s.archiver.Archive(ctx, doc)
	if err != nil {
		s.logger.Error("failed to archive competition", slog.Int("competition_id", competition.ID), slog.Any("error", err))
		return
	}
	s.logger.Info("competition archived", slog.Int("competition_id", competition.ID), slog.String("location", location))
}
