package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// Store groups the repositories the engine works with. Repositories obtained
// from the Store passed to RunInTx's callback share that transaction.
type Store interface {
	Competitions() CompetitionRepository
	Participants() ParticipantRepository
	Matches() MatchRepository
	Clubs() ClubRepository

	// RunInTx runs fn in a single transaction. fn's error, a panic or a
	// cancelled ctx rolls everything back. Nested calls join the outer transaction.
	RunInTx(ctx context.Context, fn func(tx Store) error) error
}

type postgresStore struct {
	db   *sql.DB
	exec SQLExecutor
	inTx bool
}

func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db, exec: db}
}

func (s *postgresStore) Competitions() CompetitionRepository {
	return NewPostgresCompetitionRepository(s.exec)
}

func (s *postgresStore) Participants() ParticipantRepository {
	return NewPostgresParticipantRepository(s.exec)
}

func (s *postgresStore) Matches() MatchRepository {
	return NewPostgresMatchRepository(s.exec)
}

func (s *postgresStore) Clubs() ClubRepository {
	return NewPostgresClubRepository(s.exec)
}

func (s *postgresStore) RunInTx(ctx context.Context, fn func(tx Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			if commitErr := tx.Commit(); commitErr != nil {
				err = fmt.Errorf("failed to commit transaction: %w", commitErr)
			}
		}
	}()

	err = fn(&postgresStore{db: s.db, exec: tx, inTx: true})
	if err == nil {
		err = ctx.Err()
	}
	return err
}
