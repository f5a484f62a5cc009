package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Dosada05/competition-engine/cache"
	"github.com/Dosada05/competition-engine/metrics"
	"github.com/Dosada05/competition-engine/models"
	"github.com/Dosada05/competition-engine/repositories"
)

// standingsComputeTimeout bounds a shared computation, which outlives the
// cancellation of the caller that started it.
const standingsComputeTimeout = 10 * time.Second

type StandingsService interface {
	// ComputeStandings returns the ranked table of a round-robin competition
	// from its completed matches.
	ComputeStandings(ctx context.Context, competitionID int) ([]models.StandingsRow, error)
}

type standingsService struct {
	store     repositories.Store
	cache     cache.StandingsCache
	directory ClubDirectory
	metrics   metrics.Metrics
	logger    *slog.Logger
	group     singleflight.Group
}

// NewStandingsService builds the standings read path. standingsCache and
// directory may be nil.
func NewStandingsService(
	store repositories.Store,
	standingsCache cache.StandingsCache,
	directory ClubDirectory,
	m metrics.Metrics,
	logger *slog.Logger,
) StandingsService {
	if standingsCache == nil {
		standingsCache = cache.NewNoopStandingsCache()
	}
	return &standingsService{
		store:     store,
		cache:     standingsCache,
		directory: directory,
		metrics:   m,
		logger:    loggerOrDefault(logger),
	}
}

func (s *standingsService) ComputeStandings(ctx context.Context, competitionID int) ([]models.StandingsRow, error) {
	rows, ok, err := s.cache.Get(ctx, competitionID)
	switch {
	case err != nil:
		if isContextError(err) {
			return nil, err
		}
		s.logger.Warn("standings cache read failed", slog.Int("competition_id", competitionID), slog.Any("error", err))
		s.metrics.IncStandingsCacheMiss()
	case ok:
		s.metrics.IncStandingsCacheHit()
		return s.enrich(ctx, rows), nil
	default:
		s.metrics.IncStandingsCacheMiss()
	}

	// The generation is read before the snapshot so that a result committed
	// mid-computation keeps the table out of the cache.
	generation, err := s.cache.Generation(ctx, competitionID)
	cacheable := err == nil
	if err != nil {
		if isContextError(err) {
			return nil, err
		}
		s.logger.Warn("standings cache generation read failed", slog.Int("competition_id", competitionID), slog.Any("error", err))
	}

	key := strconv.Itoa(competitionID) + ":" + strconv.FormatUint(generation, 10)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		computeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), standingsComputeTimeout)
		defer cancel()
		return s.compute(computeCtx, competitionID, generation, cacheable)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return s.enrich(ctx, res.Val.([]models.StandingsRow)), nil
	}
}

func (s *standingsService) compute(ctx context.Context, competitionID int, generation uint64, cacheable bool) ([]models.StandingsRow, error) {
	started := time.Now()

	competition, err := loadCompetition(ctx, s.store, competitionID, false)
	if err != nil {
		return nil, err
	}
	rows, err := computeLeagueTable(ctx, s.store, competition)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveStandingsDuration(time.Since(started).Seconds())

	if !cacheable {
		return rows, nil
	}
	if err := s.cache.Set(ctx, competitionID, generation, rows); err != nil {
		s.logger.Warn("standings cache write failed", slog.Int("competition_id", competitionID), slog.Any("error", err))
	}
	return rows, nil
}

// enrich attaches club display data to a copy of rows. A directory failure
// leaves the rows bare.
func (s *standingsService) enrich(ctx context.Context, rows []models.StandingsRow) []models.StandingsRow {
	out := make([]models.StandingsRow, len(rows))
	copy(out, rows)
	if s.directory == nil || len(out) == 0 {
		return out
	}

	ids := make([]int, len(out))
	for i := range out {
		ids[i] = out[i].ClubID
	}
	clubs, err := s.directory.Lookup(ctx, ids)
	if err != nil {
		s.logger.Warn("club lookup failed, standings returned without club details", slog.Any("error", err))
		return out
	}
	for i := range out {
		out[i].Club = clubs[out[i].ClubID]
	}
	return out
}
