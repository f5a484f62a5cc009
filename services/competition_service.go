package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/competition-engine/models"
	"github.com/Dosada05/competition-engine/repositories"
)

type CreateCompetitionInput struct {
	Name            string                     `json:"name"`
	Type            models.CompetitionType     `json:"type"`
	Format          models.CompetitionFormat   `json:"format"`
	MaxParticipants int                        `json:"max_participants"`
	Settings        *models.RoundRobinSettings `json:"settings,omitempty"`
}

type CreateClubInput struct {
	Name      string  `json:"name"`
	ShortName *string `json:"short_name,omitempty"`
	City      *string `json:"city,omitempty"`
	LogoKey   *string `json:"logo_key,omitempty"`
}

type RegisterParticipantInput struct {
	ClubID     int  `json:"club_id"`
	SeedNumber int  `json:"seed_number"`
	Confirmed  bool `json:"confirmed"`
}

// BracketRound groups the matches of one round for display, first round first.
type BracketRound struct {
	RoundNumber int             `json:"round_number"`
	Name        string          `json:"name"`
	Matches     []*models.Match `json:"matches"`
}

// BracketView is the display form of a competition's matches.
type BracketView struct {
	Competition *models.Competition  `json:"competition"`
	Rounds      []BracketRound       `json:"rounds"`
	Consolation *models.Match        `json:"consolation,omitempty"`
	Clubs       map[int]*models.Club `json:"clubs"`
}

type CompetitionService interface {
	CreateCompetition(ctx context.Context, input CreateCompetitionInput) (*models.Competition, error)
	CreateClub(ctx context.Context, input CreateClubInput) (*models.Club, error)
	RegisterParticipant(ctx context.Context, competitionID int, input RegisterParticipantInput) (*models.Participant, error)
	ListParticipants(ctx context.Context, competitionID int) ([]*models.Participant, error)

	GetCompetition(ctx context.Context, competitionID int) (*models.Competition, error)
	// GetChampion returns the winner of the final or the league leader once
	// the competition is complete, otherwise ErrChampionNotDetermined.
	GetChampion(ctx context.Context, competitionID int) (*models.Club, error)
	GetBracket(ctx context.Context, competitionID int) (*models.BracketGraph, error)
	GetBracketView(ctx context.Context, competitionID int) (*BracketView, error)
}

type competitionService struct {
	store     repositories.Store
	directory ClubDirectory
	logger    *slog.Logger
}

func NewCompetitionService(store repositories.Store, directory ClubDirectory, logger *slog.Logger) CompetitionService {
	return &competitionService{
		store:     store,
		directory: directory,
		logger:    loggerOrDefault(logger),
	}
}

func (s *competitionService) CreateCompetition(ctx context.Context, input CreateCompetitionInput) (*models.Competition, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.MaxParticipants < 0 {
		return nil, fmt.Errorf("%w: max_participants must not be negative", ErrValidation)
	}

	c := &models.Competition{
		Name:            name,
		Type:            input.Type,
		Format:          input.Format,
		Status:          models.CompetitionStatusScheduled,
		MaxParticipants: input.MaxParticipants,
	}
	switch input.Format {
	case models.FormatSingleElimination:
		if c.Type == "" {
			c.Type = models.CompetitionTypeKnockout
		}
	case models.FormatRoundRobin:
		if c.Type == "" {
			c.Type = models.CompetitionTypeLeague
		}
		if input.Settings != nil {
			raw, err := json.Marshal(input.Settings)
			if err != nil {
				return nil, fmt.Errorf("failed to encode round robin settings: %w", err)
			}
			settings := string(raw)
			c.SettingsJSON = &settings
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrValidation, input.Format)
	}

	if err := s.store.Competitions().Create(ctx, c); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("competition created", slog.Int("competition_id", c.ID), slog.String("format", string(c.Format)))
	return c, nil
}

func (s *competitionService) CreateClub(ctx context.Context, input CreateClubInput) (*models.Club, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	club := &models.Club{Name: name, ShortName: input.ShortName, City: input.City, LogoKey: input.LogoKey}
	if err := s.store.Clubs().Create(ctx, club); err != nil {
		return nil, handleRepositoryError(err)
	}
	return club, nil
}

func (s *competitionService) RegisterParticipant(ctx context.Context, competitionID int, input RegisterParticipantInput) (*models.Participant, error) {
	if input.SeedNumber < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSeed, input.SeedNumber)
	}

	p := &models.Participant{
		CompetitionID: competitionID,
		ClubID:        input.ClubID,
		SeedNumber:    input.SeedNumber,
		Status:        models.ParticipantStatusPending,
	}
	if input.Confirmed {
		p.Status = models.ParticipantStatusConfirmed
	}

	err := s.store.RunInTx(ctx, func(tx repositories.Store) error {
		if _, err := loadCompetition(ctx, tx, competitionID, true); err != nil {
			return err
		}
		if _, err := tx.Clubs().GetByID(ctx, input.ClubID); err != nil {
			return handleRepositoryError(err)
		}
		existing, err := tx.Matches().CountByCompetition(ctx, competitionID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrRegistrationClosed
		}
		if err := tx.Participants().Create(ctx, p); err != nil {
			return handleRepositoryError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *competitionService) ListParticipants(ctx context.Context, competitionID int) ([]*models.Participant, error) {
	if _, err := loadCompetition(ctx, s.store, competitionID, false); err != nil {
		return nil, err
	}
	participants, err := s.store.Participants().ListByCompetition(ctx, competitionID, nil)
	if err != nil {
		return nil, err
	}

	ids := make([]int, len(participants))
	for i, p := range participants {
		ids[i] = p.ClubID
	}
	clubs := s.lookupClubs(ctx, ids)
	for _, p := range participants {
		p.Club = clubs[p.ClubID]
	}
	return participants, nil
}

func (s *competitionService) GetCompetition(ctx context.Context, competitionID int) (*models.Competition, error) {
	return loadCompetition(ctx, s.store, competitionID, false)
}

func (s *competitionService) GetChampion(ctx context.Context, competitionID int) (*models.Club, error) {
	c, err := loadCompetition(ctx, s.store, competitionID, false)
	if err != nil {
		return nil, err
	}
	if c.ChampionClubID == nil || c.Status != models.CompetitionStatusCompleted {
		return nil, ErrChampionNotDetermined
	}

	if club := s.lookupClubs(ctx, []int{*c.ChampionClubID})[*c.ChampionClubID]; club != nil {
		return club, nil
	}
	return &models.Club{ID: *c.ChampionClubID}, nil
}

func (s *competitionService) GetBracket(ctx context.Context, competitionID int) (*models.BracketGraph, error) {
	c, err := loadCompetition(ctx, s.store, competitionID, false)
	if err != nil {
		return nil, err
	}
	if !c.IsElimination() {
		return nil, fmt.Errorf("%w: competition %d has no bracket", ErrUnsupportedFormat, competitionID)
	}
	matches, err := s.store.Matches().ListByCompetition(ctx, competitionID, repositories.ListMatchesFilter{BracketOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list bracket matches for competition %d: %w", competitionID, err)
	}
	return models.NewBracketGraph(competitionID, matches), nil
}

func (s *competitionService) GetBracketView(ctx context.Context, competitionID int) (*BracketView, error) {
	var (
		competition *models.Competition
		matches     []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Загрузка соревнования
	g.Go(func() error {
		c, err := loadCompetition(gCtx, s.store, competitionID, false)
		if err != nil {
			return err
		}
		competition = c
		return nil
	})

	// 2. Загрузка матчей
	g.Go(func() error {
		list, err := s.store.Matches().ListByCompetition(gCtx, competitionID, repositories.ListMatchesFilter{})
		if err != nil {
			return fmt.Errorf("failed to list matches for competition %d: %w", competitionID, err)
		}
		matches = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &BracketView{
		Competition: competition,
		Rounds:      make([]BracketRound, 0),
		Clubs:       s.lookupClubs(ctx, clubIDsOf(matches)),
	}

	byRound := make(map[int][]*models.Match)
	for _, m := range matches {
		switch {
		case m.IsBracketMatch() && m.IsConsolation:
			view.Consolation = m
		case m.IsBracketMatch():
			byRound[*m.RoundNumber] = append(byRound[*m.RoundNumber], m)
		case m.Round != nil:
			byRound[*m.Round] = append(byRound[*m.Round], m)
		}
	}

	rounds := make([]int, 0, len(byRound))
	for r := range byRound {
		rounds = append(rounds, r)
	}
	elimination := competition.IsElimination()
	// Сетка: от первого раунда к финалу (RoundNumber убывает). Лига: по турам.
	sort.Slice(rounds, func(i, j int) bool {
		if elimination {
			return rounds[i] > rounds[j]
		}
		return rounds[i] < rounds[j]
	})

	for _, r := range rounds {
		list := byRound[r]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].BracketPosition != nil && list[j].BracketPosition != nil {
				return *list[i].BracketPosition < *list[j].BracketPosition
			}
			return list[i].MatchNumber < list[j].MatchNumber
		})
		view.Rounds = append(view.Rounds, BracketRound{RoundNumber: r, Name: roundName(r, elimination), Matches: list})
	}
	return view, nil
}

func (s *competitionService) lookupClubs(ctx context.Context, ids []int) map[int]*models.Club {
	if s.directory == nil {
		return map[int]*models.Club{}
	}
	clubs, err := s.directory.Lookup(ctx, ids)
	if err != nil {
		s.logger.Warn("club lookup failed", slog.Int("clubs", len(ids)), slog.Any("error", err))
		return map[int]*models.Club{}
	}
	return clubs
}

func roundName(r int, elimination bool) string {
	if !elimination {
		return fmt.Sprintf("Matchday %d", r)
	}
	switch r {
	case 1:
		return "Final"
	case 2:
		return "Semifinals"
	case 3:
		return "Quarterfinals"
	}
	return fmt.Sprintf("Round of %d", 1<<r)
}
