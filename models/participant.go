package models

import "time"

// ParticipantStatus соответствует ENUM participant_status в БД.
type ParticipantStatus string

const (
	ParticipantStatusConfirmed ParticipantStatus = "confirmed"
	ParticipantStatusPending   ParticipantStatus = "pending"
	ParticipantStatusWithdrawn ParticipantStatus = "withdrawn"
)

// Participant связывает клуб с соревнованием и хранит его посев.
type Participant struct {
	ID            int               `json:"id" db:"id"`
	CompetitionID int               `json:"competition_id" db:"competition_id"`
	ClubID        int               `json:"club_id" db:"club_id"`
	SeedNumber    int               `json:"seed_number" db:"seed_number"`
	Status        ParticipantStatus `json:"status" db:"status"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`

	Club *Club `json:"club,omitempty" db:"-"`
}
