package repositories

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/competition-engine/models"
)

// MemoryStore keeps everything in process memory. Transactions work on a
// copy of the committed state and swap it in on success; one transaction
// writes at a time, which gives the same per-match serialisation as row
// locks. Stored records are never mutated in place, so copying the maps is
// enough to isolate a transaction.
//
// The unique and foreign keys of the SQL schema that involve competitions,
// matches and participants are checked. Club references are not.
type MemoryStore struct {
	writer    sync.Mutex
	mu        sync.RWMutex
	committed *memoryState

	// tx is set on the Store handed to a RunInTx callback.
	tx  *memoryState
	now func() time.Time
}

type memoryState struct {
	competitions map[int]*models.Competition
	participants map[int]*models.Participant
	matches      map[int]*models.Match
	clubs        map[int]*models.Club

	lastCompetitionID int
	lastParticipantID int
	lastMatchID       int
	lastClubID        int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		committed: &memoryState{
			competitions: make(map[int]*models.Competition),
			participants: make(map[int]*models.Participant),
			matches:      make(map[int]*models.Match),
			clubs:        make(map[int]*models.Club),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (st *memoryState) clone() *memoryState {
	c := *st
	c.competitions = maps.Clone(st.competitions)
	c.participants = maps.Clone(st.participants)
	c.matches = maps.Clone(st.matches)
	c.clubs = maps.Clone(st.clubs)
	return &c
}

func (s *MemoryStore) Competitions() CompetitionRepository {
	return &memoryCompetitionRepository{s: s}
}

func (s *MemoryStore) Participants() ParticipantRepository {
	return &memoryParticipantRepository{s: s}
}

func (s *MemoryStore) Matches() MatchRepository {
	return &memoryMatchRepository{s: s}
}

func (s *MemoryStore) Clubs() ClubRepository {
	return &memoryClubRepository{s: s}
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(tx Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	s.mu.RLock()
	work := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(&MemoryStore{tx: work, now: s.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) read(fn func(st *memoryState) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.committed)
}

func (s *MemoryStore) write(ctx context.Context, fn func(st *memoryState) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	return s.RunInTx(ctx, func(tx Store) error {
		return fn(tx.(*MemoryStore).tx)
	})
}

func cloneCompetition(c *models.Competition) *models.Competition {
	out := *c
	out.ChampionClubID = cloneIntPtr(c.ChampionClubID)
	out.ThirdPlaceClubID = cloneIntPtr(c.ThirdPlaceClubID)
	out.SettingsJSON = cloneStringPtr(c.SettingsJSON)
	out.Participants = nil
	out.Matches = nil
	return &out
}

func cloneParticipant(p *models.Participant) *models.Participant {
	out := *p
	out.Club = nil
	return &out
}

func cloneMatch(m *models.Match) *models.Match {
	out := *m
	out.Round = cloneIntPtr(m.Round)
	out.RoundNumber = cloneIntPtr(m.RoundNumber)
	out.BracketPosition = cloneIntPtr(m.BracketPosition)
	out.HomeClubID = cloneIntPtr(m.HomeClubID)
	out.AwayClubID = cloneIntPtr(m.AwayClubID)
	out.HomeScore = cloneIntPtr(m.HomeScore)
	out.AwayScore = cloneIntPtr(m.AwayScore)
	out.HomeSeed = cloneIntPtr(m.HomeSeed)
	out.AwaySeed = cloneIntPtr(m.AwaySeed)
	out.NextMatchID = cloneIntPtr(m.NextMatchID)
	out.ConsolationMatchID = cloneIntPtr(m.ConsolationMatchID)
	out.WinnerClubID = cloneIntPtr(m.WinnerClubID)
	out.ShootoutWinnerClubID = cloneIntPtr(m.ShootoutWinnerClubID)
	if m.ScheduledAt != nil {
		t := *m.ScheduledAt
		out.ScheduledAt = &t
	}
	return &out
}

func cloneClub(c *models.Club) *models.Club {
	out := *c
	out.ShortName = cloneStringPtr(c.ShortName)
	out.City = cloneStringPtr(c.City)
	out.LogoKey = cloneStringPtr(c.LogoKey)
	out.LogoURL = nil
	return &out
}

type memoryCompetitionRepository struct {
	s *MemoryStore
}

func (r *memoryCompetitionRepository) Create(ctx context.Context, c *models.Competition) error {
	return r.s.write(ctx, func(st *memoryState) error {
		for _, existing := range st.competitions {
			if existing.Name == c.Name {
				return ErrCompetitionNameConflict
			}
		}
		if c.MaxParticipants < 0 {
			return ErrCompetitionInvalidFields
		}
		st.lastCompetitionID++
		c.ID = st.lastCompetitionID
		c.CreatedAt = r.s.now()
		c.UpdatedAt = c.CreatedAt
		st.competitions[c.ID] = cloneCompetition(c)
		return nil
	})
}

func (r *memoryCompetitionRepository) GetByID(ctx context.Context, id int) (*models.Competition, error) {
	var out *models.Competition
	err := r.s.read(func(st *memoryState) error {
		c, ok := st.competitions[id]
		if !ok {
			return ErrCompetitionNotFound
		}
		out = cloneCompetition(c)
		return nil
	})
	return out, err
}

func (r *memoryCompetitionRepository) GetForUpdate(ctx context.Context, id int) (*models.Competition, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryCompetitionRepository) UpdateStatus(ctx context.Context, id int, status models.CompetitionStatus) error {
	return r.update(ctx, id, func(c *models.Competition) {
		c.Status = status
	})
}

func (r *memoryCompetitionRepository) UpdatePlacings(ctx context.Context, id int, championClubID, thirdPlaceClubID *int) error {
	return r.update(ctx, id, func(c *models.Competition) {
		c.ChampionClubID = cloneIntPtr(championClubID)
		c.ThirdPlaceClubID = cloneIntPtr(thirdPlaceClubID)
	})
}

func (r *memoryCompetitionRepository) update(ctx context.Context, id int, mutate func(c *models.Competition)) error {
	return r.s.write(ctx, func(st *memoryState) error {
		c, ok := st.competitions[id]
		if !ok {
			return ErrCompetitionNotFound
		}
		next := cloneCompetition(c)
		mutate(next)
		next.UpdatedAt = r.s.now()
		st.competitions[id] = next
		return nil
	})
}

type memoryParticipantRepository struct {
	s *MemoryStore
}

func (r *memoryParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	return r.s.write(ctx, func(st *memoryState) error {
		if _, ok := st.competitions[p.CompetitionID]; !ok {
			return ErrParticipantCompetitionInvalid
		}
		for _, existing := range st.participants {
			if existing.CompetitionID != p.CompetitionID {
				continue
			}
			if existing.ClubID == p.ClubID {
				return ErrParticipantConflict
			}
			if existing.SeedNumber == p.SeedNumber {
				return ErrParticipantSeedConflict
			}
		}
		st.lastParticipantID++
		p.ID = st.lastParticipantID
		p.CreatedAt = r.s.now()
		st.participants[p.ID] = cloneParticipant(p)
		return nil
	})
}

func (r *memoryParticipantRepository) ListByCompetition(ctx context.Context, competitionID int, statusFilter *models.ParticipantStatus) ([]*models.Participant, error) {
	out := make([]*models.Participant, 0)
	err := r.s.read(func(st *memoryState) error {
		for _, p := range st.participants {
			if p.CompetitionID != competitionID {
				continue
			}
			if statusFilter != nil && p.Status != *statusFilter {
				continue
			}
			out = append(out, cloneParticipant(p))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].SeedNumber != out[j].SeedNumber {
			return out[i].SeedNumber < out[j].SeedNumber
		}
		return out[i].ClubID < out[j].ClubID
	})
	return out, err
}

type memoryMatchRepository struct {
	s *MemoryStore
}

func (r *memoryMatchRepository) Create(ctx context.Context, m *models.Match) error {
	return r.s.write(ctx, func(st *memoryState) error {
		if _, ok := st.competitions[m.CompetitionID]; !ok {
			return ErrMatchCompetitionInvalid
		}
		if !m.HasConsistentScore() {
			return fmt.Errorf("match %d: score pair must be both set or both empty", m.ID)
		}
		if err := checkLinks(st, m, m.NextMatchID, m.ConsolationMatchID); err != nil {
			return err
		}
		if m.RoundNumber != nil && m.BracketPosition != nil {
			for _, existing := range st.matches {
				if existing.CompetitionID == m.CompetitionID &&
					models.EqualIntPtr(existing.RoundNumber, m.RoundNumber) &&
					models.EqualIntPtr(existing.BracketPosition, m.BracketPosition) {
					return ErrMatchSlotConflict
				}
			}
		}
		st.lastMatchID++
		m.ID = st.lastMatchID
		m.CreatedAt = r.s.now()
		m.UpdatedAt = m.CreatedAt
		st.matches[m.ID] = cloneMatch(m)
		return nil
	})
}

// checkLinks requires every link target of from to exist in the same
// competition and sit in a round closer to the final.
func checkLinks(st *memoryState, from *models.Match, ids ...*int) error {
	for _, id := range ids {
		if id == nil {
			continue
		}
		target, ok := st.matches[*id]
		if !ok || target.CompetitionID != from.CompetitionID {
			return ErrMatchLinkInvalid
		}
		if from.RoundNumber == nil || target.RoundNumber == nil || *target.RoundNumber >= *from.RoundNumber {
			return ErrMatchLinkInvalid
		}
	}
	return nil
}

func (r *memoryMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	var out *models.Match
	err := r.s.read(func(st *memoryState) error {
		m, ok := st.matches[id]
		if !ok {
			return ErrMatchNotFound
		}
		out = cloneMatch(m)
		return nil
	})
	return out, err
}

func (r *memoryMatchRepository) GetForUpdate(ctx context.Context, id int) (*models.Match, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryMatchRepository) ListByCompetition(ctx context.Context, competitionID int, filter ListMatchesFilter) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	err := r.s.read(func(st *memoryState) error {
		for _, m := range st.matches {
			if m.CompetitionID != competitionID {
				continue
			}
			if filter.Status != nil && m.Status != *filter.Status {
				continue
			}
			if filter.BracketOnly && m.RoundNumber == nil {
				continue
			}
			out = append(out, cloneMatch(m))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *memoryMatchRepository) CountByCompetition(ctx context.Context, competitionID int) (int, error) {
	count := 0
	err := r.s.read(func(st *memoryState) error {
		for _, m := range st.matches {
			if m.CompetitionID == competitionID {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *memoryMatchRepository) Update(ctx context.Context, m *models.Match) error {
	return r.s.write(ctx, func(st *memoryState) error {
		stored, ok := st.matches[m.ID]
		if !ok {
			return ErrMatchNotFound
		}
		if !m.HasConsistentScore() {
			return fmt.Errorf("match %d: score pair must be both set or both empty", m.ID)
		}
		next := cloneMatch(stored)
		next.HomeClubID = cloneIntPtr(m.HomeClubID)
		next.AwayClubID = cloneIntPtr(m.AwayClubID)
		next.HomeScore = cloneIntPtr(m.HomeScore)
		next.AwayScore = cloneIntPtr(m.AwayScore)
		next.HomeSeed = cloneIntPtr(m.HomeSeed)
		next.AwaySeed = cloneIntPtr(m.AwaySeed)
		next.WinnerClubID = cloneIntPtr(m.WinnerClubID)
		next.ShootoutWinnerClubID = cloneIntPtr(m.ShootoutWinnerClubID)
		next.IsBye = m.IsBye
		next.Status = m.Status
		next.UpdatedAt = r.s.now()
		m.UpdatedAt = next.UpdatedAt
		st.matches[m.ID] = next
		return nil
	})
}

func (r *memoryMatchRepository) UpdateLinks(ctx context.Context, matchID int, nextMatchID, consolationMatchID *int) error {
	return r.s.write(ctx, func(st *memoryState) error {
		stored, ok := st.matches[matchID]
		if !ok {
			return ErrMatchNotFound
		}
		if err := checkLinks(st, stored, nextMatchID, consolationMatchID); err != nil {
			return err
		}
		next := cloneMatch(stored)
		next.NextMatchID = cloneIntPtr(nextMatchID)
		next.ConsolationMatchID = cloneIntPtr(consolationMatchID)
		st.matches[matchID] = next
		return nil
	})
}

type memoryClubRepository struct {
	s *MemoryStore
}

func (r *memoryClubRepository) Create(ctx context.Context, club *models.Club) error {
	return r.s.write(ctx, func(st *memoryState) error {
		for _, existing := range st.clubs {
			if existing.Name == club.Name {
				return ErrClubNameConflict
			}
		}
		st.lastClubID++
		club.ID = st.lastClubID
		club.CreatedAt = r.s.now()
		st.clubs[club.ID] = cloneClub(club)
		return nil
	})
}

func (r *memoryClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	var out *models.Club
	err := r.s.read(func(st *memoryState) error {
		c, ok := st.clubs[id]
		if !ok {
			return ErrClubNotFound
		}
		out = cloneClub(c)
		return nil
	})
	return out, err
}

func (r *memoryClubRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Club, error) {
	out := make([]*models.Club, 0, len(ids))
	err := r.s.read(func(st *memoryState) error {
		seen := make(map[int]bool, len(ids))
		for _, id := range ids {
			c, ok := st.clubs[id]
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, cloneClub(c))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

var _ Store = (*MemoryStore)(nil)
