package models

// HeadToHeadRecord aggregates the results of one club against one opponent.
type HeadToHeadRecord struct {
	Played       int `json:"played" msgpack:"played"`
	Points       int `json:"points" msgpack:"points"`
	GoalsFor     int `json:"goals_for" msgpack:"goals_for"`
	GoalsAgainst int `json:"goals_against" msgpack:"goals_against"`
}

// StandingsRow is one derived line of a league table. It is never persisted.
type StandingsRow struct {
	Rank           int  `json:"rank" msgpack:"rank"`
	ClubID         int  `json:"club_id" msgpack:"club_id"`
	Seed           *int `json:"seed,omitempty" msgpack:"seed"`
	Played         int  `json:"played" msgpack:"played"`
	Won            int  `json:"won" msgpack:"won"`
	Drawn          int  `json:"drawn" msgpack:"drawn"`
	Lost           int  `json:"lost" msgpack:"lost"`
	GoalsFor       int  `json:"goals_for" msgpack:"goals_for"`
	GoalsAgainst   int  `json:"goals_against" msgpack:"goals_against"`
	GoalDifference int  `json:"goal_difference" msgpack:"goal_difference"`
	Points         int  `json:"points" msgpack:"points"`

	// HeadToHead is keyed by opponent club ID.
	HeadToHead map[int]HeadToHeadRecord `json:"head_to_head,omitempty" msgpack:"head_to_head"`

	Club *Club `json:"club,omitempty" msgpack:"-"`
}
