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
	ErrClubNotFound     = errors.New("club not found")
	ErrClubNameConflict = errors.New("club name already exists")
)

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int) (*models.Club, error)
	// ListByIDs returns the clubs that exist among ids, ordered by ID.
	ListByIDs(ctx context.Context, ids []int) ([]*models.Club, error)
}

type postgresClubRepository struct {
	exec SQLExecutor
}

func NewPostgresClubRepository(exec SQLExecutor) ClubRepository {
	return &postgresClubRepository{exec: exec}
}

func (r *postgresClubRepository) Create(ctx context.Context, club *models.Club) error {
	query := `
		INSERT INTO clubs (name, short_name, city, logo_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.exec.QueryRowContext(ctx, query, club.Name, club.ShortName, club.City, club.LogoKey).
		Scan(&club.ID, &club.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "clubs_name_key" {
			return ErrClubNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	query := `SELECT id, name, short_name, city, logo_key, created_at FROM clubs WHERE id = $1`

	club := &models.Club{}
	err := r.exec.QueryRowContext(ctx, query, id).Scan(
		&club.ID, &club.Name, &club.ShortName, &club.City, &club.LogoKey, &club.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return club, nil
}

func (r *postgresClubRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Club, error) {
	if len(ids) == 0 {
		return []*models.Club{}, nil
	}

	query := `
		SELECT id, name, short_name, city, logo_key, created_at
		FROM clubs
		WHERE id = ANY($1)
		ORDER BY id`

	ids64 := make([]int64, len(ids))
	for i, id := range ids {
		ids64[i] = int64(id)
	}

	rows, err := r.exec.QueryContext(ctx, query, pq.Array(ids64))
	if err != nil {
		return nil, fmt.Errorf("ListByIDs: failed to query clubs: %w", err)
	}
	defer rows.Close()

	clubs := make([]*models.Club, 0, len(ids))
	for rows.Next() {
		club := &models.Club{}
		if err := rows.Scan(&club.ID, &club.Name, &club.ShortName, &club.City, &club.LogoKey, &club.CreatedAt); err != nil {
			return nil, fmt.Errorf("ListByIDs: failed to scan club: %w", err)
		}
		clubs = append(clubs, club)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByIDs: rows iteration error: %w", err)
	}
	return clubs, nil
}
