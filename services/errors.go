package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/competition-engine/brackets"
	"github.com/Dosada05/competition-engine/repositories"
)

// Ошибки движка соревнований, используемые в сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrMatchNotFound       = errors.New("match not found")

	// Построение сетки и расписания
	ErrInvalidParticipantCount  = errors.New("invalid participant count")
	ErrDuplicateSeed            = errors.New("seed number used by more than one participant")
	ErrInvalidSeed              = errors.New("seed number must be a positive integer")
	ErrDuplicateParticipant     = errors.New("club listed more than once")
	ErrBracketAlreadyBuilt      = errors.New("bracket already built for this competition")
	ErrScheduleAlreadyGenerated = errors.New("fixtures already generated for this competition")
	ErrUnsupportedFormat        = errors.New("operation not supported for this competition format")
	ErrConsolationUnavailable   = errors.New("consolation match requires two decisive semifinals")

	// Запись результатов
	ErrDrawNotAllowed        = errors.New("draw not allowed in an elimination match without a shootout winner")
	ErrInvalidShootoutWinner = errors.New("shootout winner must be one of the two clubs and is only accepted for a drawn elimination match")
	ErrInconsistentScorePair = errors.New("home and away score must both be set or both be empty")
	ErrInvalidScore          = errors.New("scores must be non-negative")
	ErrMatchNotReady         = errors.New("match does not have both clubs yet")
	ErrMatchCancelled        = errors.New("match is cancelled")
	ErrMatchIsWalkover       = errors.New("match is a walkover and has no result to record")
	ErrPropagationConflict   = errors.New("a downstream match has already been played")

	ErrChampionNotDetermined = errors.New("champion not determined yet")

	// Регистрация
	ErrCompetitionNameConflict = errors.New("competition name already exists")
	ErrClubNameConflict        = errors.New("club name already exists")
	ErrClubNotFound            = errors.New("club not found")
	ErrParticipantConflict     = errors.New("club already registered for this competition")
	ErrRegistrationClosed      = errors.New("registration is closed once matches exist")
	ErrValidation              = errors.New("validation failed")
)

// mapGeneratorError translates bracket generator failures into service errors.
func mapGeneratorError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, brackets.ErrNotEnoughParticipants):
		return fmt.Errorf("%w: %v", ErrInvalidParticipantCount, err)
	case errors.Is(err, brackets.ErrDuplicateSeed):
		return fmt.Errorf("%w: %v", ErrDuplicateSeed, err)
	case errors.Is(err, brackets.ErrInvalidSeed):
		return fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	case errors.Is(err, brackets.ErrDuplicateParticipant):
		return fmt.Errorf("%w: %v", ErrDuplicateParticipant, err)
	case errors.Is(err, brackets.ErrConsolationUnavailable):
		return fmt.Errorf("%w: %v", ErrConsolationUnavailable, err)
	}
	return err
}

// handleRepositoryError maps repository errors to their service counterparts.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrCompetitionNotFound):
		return ErrCompetitionNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrClubNotFound), errors.Is(err, repositories.ErrParticipantClubInvalid):
		return ErrClubNotFound
	case errors.Is(err, repositories.ErrCompetitionNameConflict):
		return ErrCompetitionNameConflict
	case errors.Is(err, repositories.ErrClubNameConflict):
		return ErrClubNameConflict
	case errors.Is(err, repositories.ErrParticipantConflict):
		return ErrParticipantConflict
	case errors.Is(err, repositories.ErrParticipantSeedConflict):
		return fmt.Errorf("%w: %v", ErrDuplicateSeed, err)
	case errors.Is(err, repositories.ErrParticipantCompetitionInvalid):
		return ErrCompetitionNotFound
	case errors.Is(err, repositories.ErrCompetitionInvalidFields):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}
