package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/competition-engine/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantConflict           = errors.New("participant conflict: club already registered for this competition")
	ErrParticipantSeedConflict       = errors.New("participant conflict: seed number already taken in this competition")
	ErrParticipantClubInvalid        = errors.New("participant club conflict or invalid")
	ErrParticipantCompetitionInvalid = errors.New("participant competition conflict or invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	// ListByCompetition returns registrations ordered by seed number, then club ID.
	ListByCompetition(ctx context.Context, competitionID int, statusFilter *models.ParticipantStatus) ([]*models.Participant, error)
}

type postgresParticipantRepository struct {
	exec SQLExecutor
}

func NewPostgresParticipantRepository(exec SQLExecutor) ParticipantRepository {
	return &postgresParticipantRepository{exec: exec}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (competition_id, club_id, seed_number, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.exec.QueryRowContext(ctx, query, p.CompetitionID, p.ClubID, p.SeedNumber, p.Status).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "participants_competition_id_seed_number_key" {
					return ErrParticipantSeedConflict
				}
				return ErrParticipantConflict
			case "23503": // foreign_key_violation
				if strings.Contains(pqErr.Constraint, "club_id") {
					return ErrParticipantClubInvalid
				}
				return ErrParticipantCompetitionInvalid
			}
		}
		return fmt.Errorf("Create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) ListByCompetition(ctx context.Context, competitionID int, statusFilter *models.ParticipantStatus) ([]*models.Participant, error) {
	query := `
		SELECT id, competition_id, club_id, seed_number, status, created_at
		FROM participants
		WHERE competition_id = $1`
	args := []interface{}{competitionID}

	if statusFilter != nil {
		query += " AND status = $2"
		args = append(args, *statusFilter)
	}
	query += " ORDER BY seed_number ASC, club_id ASC"

	rows, err := r.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListByCompetition: failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(&p.ID, &p.CompetitionID, &p.ClubID, &p.SeedNumber, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByCompetition: failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByCompetition: rows iteration error: %w", err)
	}
	return participants, nil
}
