package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/competition-engine/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchSlotConflict       = errors.New("a match already occupies this round and bracket position")
	ErrMatchCompetitionInvalid = errors.New("match competition conflict or invalid")
	ErrMatchClubInvalid        = errors.New("match club conflict or invalid")
	ErrMatchLinkInvalid        = errors.New("match next or consolation link is invalid")
)

// ListMatchesFilter narrows ListByCompetition. Zero value returns every match.
type ListMatchesFilter struct {
	Status      *models.MatchStatus
	BracketOnly bool
}

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// GetForUpdate reads the match and locks it until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int) (*models.Match, error)
	// ListByCompetition returns matches in creation order.
	ListByCompetition(ctx context.Context, competitionID int, filter ListMatchesFilter) ([]*models.Match, error)
	CountByCompetition(ctx context.Context, competitionID int) (int, error)
	// Update writes the mutable state of a match: clubs, seeds, scores, outcome and status.
	Update(ctx context.Context, match *models.Match) error
	UpdateLinks(ctx context.Context, matchID int, nextMatchID, consolationMatchID *int) error
}

type postgresMatchRepository struct {
	exec SQLExecutor
}

func NewPostgresMatchRepository(exec SQLExecutor) MatchRepository {
	return &postgresMatchRepository{exec: exec}
}

const matchColumns = `
	id, competition_id, round, round_number, bracket_position, match_number,
	home_club_id, away_club_id, home_score, away_score, home_seed, away_seed,
	next_match_id, consolation_match_id, winner_club_id, shootout_winner_club_id,
	is_bye, is_consolation, status, scheduled_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.CompetitionID, &m.Round, &m.RoundNumber, &m.BracketPosition, &m.MatchNumber,
		&m.HomeClubID, &m.AwayClubID, &m.HomeScore, &m.AwayScore, &m.HomeSeed, &m.AwaySeed,
		&m.NextMatchID, &m.ConsolationMatchID, &m.WinnerClubID, &m.ShootoutWinnerClubID,
		&m.IsBye, &m.IsConsolation, &m.Status, &m.ScheduledAt, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches
			(competition_id, round, round_number, bracket_position, match_number,
			 home_club_id, away_club_id, home_score, away_score, home_seed, away_seed,
			 next_match_id, consolation_match_id, winner_club_id, shootout_winner_club_id,
			 is_bye, is_consolation, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at`

	err := r.exec.QueryRowContext(ctx, query,
		m.CompetitionID, m.Round, m.RoundNumber, m.BracketPosition, m.MatchNumber,
		m.HomeClubID, m.AwayClubID, m.HomeScore, m.AwayScore, m.HomeSeed, m.AwaySeed,
		m.NextMatchID, m.ConsolationMatchID, m.WinnerClubID, m.ShootoutWinnerClubID,
		m.IsBye, m.IsConsolation, m.Status, m.ScheduledAt,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	return r.get(ctx, `SELECT`+matchColumns+` FROM matches WHERE id = $1`, id)
}

func (r *postgresMatchRepository) GetForUpdate(ctx context.Context, id int) (*models.Match, error) {
	return r.get(ctx, `SELECT`+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresMatchRepository) get(ctx context.Context, query string, id int) (*models.Match, error) {
	m, err := scanMatch(r.exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByCompetition(ctx context.Context, competitionID int, filter ListMatchesFilter) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE competition_id = $1`
	args := []interface{}{competitionID}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}
	if filter.BracketOnly {
		query += " AND round_number IS NOT NULL"
	}
	query += " ORDER BY id ASC"

	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListByCompetition: failed to query matches for competition %d: %w", competitionID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByCompetition: failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByCompetition: rows iteration error: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByCompetition(ctx context.Context, competitionID int) (int, error) {
	var count int
	err := r.exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE competition_id = $1`, competitionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("CountByCompetition: %w", err)
	}
	return count, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, m *models.Match) error {
	query := `
		UPDATE matches SET
			home_club_id = $1, away_club_id = $2, home_score = $3, away_score = $4,
			home_seed = $5, away_seed = $6, winner_club_id = $7, shootout_winner_club_id = $8,
			is_bye = $9, status = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at`

	err := r.exec.QueryRowContext(ctx, query,
		m.HomeClubID, m.AwayClubID, m.HomeScore, m.AwayScore,
		m.HomeSeed, m.AwaySeed, m.WinnerClubID, m.ShootoutWinnerClubID,
		m.IsBye, m.Status, m.ID,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("Update: failed to update match %d: %w", m.ID, r.handleMatchError(err))
	}
	return nil
}

func (r *postgresMatchRepository) UpdateLinks(ctx context.Context, matchID int, nextMatchID, consolationMatchID *int) error {
	query := `UPDATE matches SET next_match_id = $1, consolation_match_id = $2 WHERE id = $3`
	result, err := r.exec.ExecContext(ctx, query, nextMatchID, consolationMatchID, matchID)
	if err != nil {
		return fmt.Errorf("UpdateLinks: failed to link match %d: %w", matchID, r.handleMatchError(err))
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// "23503": foreign_key_violation
		// "23505": unique_violation
		switch pqErr.Constraint {
		case "matches_competition_id_fkey":
			return ErrMatchCompetitionInvalid
		case "matches_home_club_id_fkey", "matches_away_club_id_fkey",
			"matches_winner_club_id_fkey", "matches_shootout_winner_club_id_fkey":
			return ErrMatchClubInvalid
		case "matches_next_match_id_fkey", "matches_consolation_match_id_fkey":
			return ErrMatchLinkInvalid
		case "matches_competition_round_position_key":
			return ErrMatchSlotConflict
		case "matches_score_pair_check":
			return fmt.Errorf("score pair must be both set or both empty: %w", err)
		}
	}
	return err
}
