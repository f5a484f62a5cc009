package models

import "encoding/json"

// RoundRobinSettings defines specific settings for a round-robin competition.
type RoundRobinSettings struct {
	NumberOfRounds int `json:"number_of_rounds"` // 1 for single round-robin, 2 for double
	PointsForWin   int `json:"points_for_win"`
	PointsForDraw  int `json:"points_for_draw"`
	PointsForLoss  int `json:"points_for_loss"`
}

// ScoringRule is the number of table points awarded per outcome.
type ScoringRule struct {
	Win  int `json:"win"`
	Draw int `json:"draw"`
	Loss int `json:"loss"`
}

// DefaultScoringRule is the 3/1/0 rule.
var DefaultScoringRule = ScoringRule{Win: 3, Draw: 1, Loss: 0}

// RoundRobinSettings unmarshals SettingsJSON and fills in defaults.
// A competition without settings gets a single round and the 3/1/0 rule.
func (c *Competition) RoundRobinSettings() (*RoundRobinSettings, error) {
	settings := RoundRobinSettings{}
	if c.SettingsJSON != nil && *c.SettingsJSON != "" {
		if err := json.Unmarshal([]byte(*c.SettingsJSON), &settings); err != nil {
			return nil, err
		}
	}
	if settings.NumberOfRounds < 1 || settings.NumberOfRounds > 2 {
		settings.NumberOfRounds = 1
	}
	if settings.PointsForWin == 0 && settings.PointsForDraw == 0 && settings.PointsForLoss == 0 {
		settings.PointsForWin = DefaultScoringRule.Win
		settings.PointsForDraw = DefaultScoringRule.Draw
		settings.PointsForLoss = DefaultScoringRule.Loss
	}
	return &settings, nil
}

// ScoringRule returns the scoring rule held by the settings.
func (s *RoundRobinSettings) ScoringRule() ScoringRule {
	return ScoringRule{Win: s.PointsForWin, Draw: s.PointsForDraw, Loss: s.PointsForLoss}
}
