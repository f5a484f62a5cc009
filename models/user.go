package models

import "time"

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleOrganizer UserRole = "organizer"
	RoleViewer    UserRole = "viewer"
)

// User is an operator account; only its ID and role reach the engine, via JWT claims.
type User struct {
	ID        int       `json:"id"`
	Nickname  string    `json:"nickname"`
	Role      UserRole  `json:"role"`
	ClubID    *int      `json:"club_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CanManageCompetitions reports whether the role may build brackets and record results.
func (r UserRole) CanManageCompetitions() bool {
	return r == RoleAdmin || r == RoleOrganizer
}
