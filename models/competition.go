package models

import "time"

// CompetitionType описывает вид соревнования.
type CompetitionType string

const (
	CompetitionTypeLeague   CompetitionType = "league"
	CompetitionTypeKnockout CompetitionType = "knockout"
	CompetitionTypeHybrid   CompetitionType = "hybrid"
)

// CompetitionFormat определяет, как строится расписание матчей.
type CompetitionFormat string

const (
	FormatRoundRobin        CompetitionFormat = "round_robin"
	FormatSingleElimination CompetitionFormat = "single_elimination"
)

// CompetitionStatus соответствует ENUM competition_status в БД.
type CompetitionStatus string

const (
	CompetitionStatusScheduled  CompetitionStatus = "scheduled"
	CompetitionStatusInProgress CompetitionStatus = "in_progress"
	CompetitionStatusCompleted  CompetitionStatus = "completed"
)

// Competition представляет соревнование (лигу или турнир на выбывание).
type Competition struct {
	ID               int               `json:"id" db:"id"`
	Name             string            `json:"name" db:"name"`
	Type             CompetitionType   `json:"type" db:"type"`
	Format           CompetitionFormat `json:"format" db:"format"`
	Status           CompetitionStatus `json:"status" db:"status"`
	MaxParticipants  int               `json:"max_participants" db:"max_participants"`
	ChampionClubID   *int              `json:"champion_club_id,omitempty" db:"champion_club_id"`
	ThirdPlaceClubID *int              `json:"third_place_club_id,omitempty" db:"third_place_club_id"`
	SettingsJSON     *string           `json:"-" db:"settings_json"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`

	Participants []Participant `json:"participants,omitempty" db:"-"`
	Matches      []Match       `json:"matches,omitempty" db:"-"`
}

// IsElimination сообщает, решаются ли матчи соревнования на выбывание (без ничьих).
func (c *Competition) IsElimination() bool {
	return c.Format == FormatSingleElimination
}
