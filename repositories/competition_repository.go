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
	ErrCompetitionNotFound      = errors.New("competition not found")
	ErrCompetitionNameConflict  = errors.New("competition name already exists")
	ErrCompetitionChampionClub  = errors.New("competition champion or third place references an unknown club")
	ErrCompetitionInvalidFields = errors.New("competition violates a check constraint")
)

type CompetitionRepository interface {
	Create(ctx context.Context, competition *models.Competition) error
	GetByID(ctx context.Context, id int) (*models.Competition, error)
	// GetForUpdate reads the competition and locks it until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int) (*models.Competition, error)
	UpdateStatus(ctx context.Context, id int, status models.CompetitionStatus) error
	UpdatePlacings(ctx context.Context, id int, championClubID, thirdPlaceClubID *int) error
}

type postgresCompetitionRepository struct {
	exec SQLExecutor
}

func NewPostgresCompetitionRepository(exec SQLExecutor) CompetitionRepository {
	return &postgresCompetitionRepository{exec: exec}
}

const competitionColumns = `
	id, name, type, format, status, max_participants,
	champion_club_id, third_place_club_id, settings_json, created_at, updated_at`

func (r *postgresCompetitionRepository) Create(ctx context.Context, c *models.Competition) error {
	query := `
		INSERT INTO competitions (name, type, format, status, max_participants, settings_json)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.exec.QueryRowContext(ctx, query,
		c.Name, c.Type, c.Format, c.Status, c.MaxParticipants, c.SettingsJSON,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	return r.handleCompetitionError(err)
}

func (r *postgresCompetitionRepository) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	return r.get(ctx, `SELECT`+competitionColumns+` FROM competitions WHERE id = $1`, id)
}

func (r *postgresCompetitionRepository) GetForUpdate(ctx context.Context, id int) (*models.Competition, error) {
	return r.get(ctx, `SELECT`+competitionColumns+` FROM competitions WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresCompetitionRepository) get(ctx context.Context, query string, id int) (*models.Competition, error) {
	c := &models.Competition{}
	err := r.exec.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Type, &c.Format, &c.Status, &c.MaxParticipants,
		&c.ChampionClubID, &c.ThirdPlaceClubID, &c.SettingsJSON, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresCompetitionRepository) UpdateStatus(ctx context.Context, id int, status models.CompetitionStatus) error {
	query := `UPDATE competitions SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("UpdateStatus: failed to update competition %d: %w", id, r.handleCompetitionError(err))
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) UpdatePlacings(ctx context.Context, id int, championClubID, thirdPlaceClubID *int) error {
	query := `UPDATE competitions SET champion_club_id = $1, third_place_club_id = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.exec.ExecContext(ctx, query, championClubID, thirdPlaceClubID, id)
	if err != nil {
		return fmt.Errorf("UpdatePlacings: failed to update competition %d: %w", id, r.handleCompetitionError(err))
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) handleCompetitionError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "competitions_name_key":
			return ErrCompetitionNameConflict
		case "competitions_champion_club_id_fkey", "competitions_third_place_club_id_fkey":
			return ErrCompetitionChampionClub
		case "competitions_max_participants_check":
			return ErrCompetitionInvalidFields
		}
	}
	return err
}
