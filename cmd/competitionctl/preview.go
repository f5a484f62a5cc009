package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/Dosada05/competition-engine/brackets"
	"github.com/Dosada05/competition-engine/models"
)

// previewBracket runs the generator for clubs 1..n where club i holds seed i.
func previewBracket(ctx context.Context, format string, n int, consolation bool, legs int) ([]*brackets.BracketMatch, error) {
	var generator brackets.BracketGenerator
	switch models.CompetitionFormat(format) {
	case models.FormatSingleElimination:
		generator = brackets.NewSingleEliminationGenerator()
	case models.FormatRoundRobin:
		generator = brackets.NewRoundRobinGenerator()
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	participants := make([]brackets.SeededParticipant, 0, n)
	for i := 1; i <= n; i++ {
		participants = append(participants, brackets.SeededParticipant{ClubID: i, Seed: i})
	}
	return generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		Participants:     participants,
		ConsolationMatch: consolation,
		NumberOfLegs:     legs,
	})
}

func printPreview(w io.Writer, matches []*brackets.BracketMatch) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUND\tDEPTH\tPOS\tHOME\tAWAY\tNEXT\tNOTE")
	for _, m := range matches {
		note := ""
		switch {
		case m.IsBye:
			note = "bye, advances " + club(m.WinnerClubID)
		case m.IsConsolation:
			note = "third place"
		}
		next := "-"
		if m.NextMatchUID != nil {
			next = *m.NextMatchUID
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\t%s\n",
			m.Round, m.RoundNumber, m.OrderInRound, club(m.HomeClubID), club(m.AwayClubID), next, note)
	}
	return tw.Flush()
}

func club(id *int) string {
	if id == nil {
		return "TBD"
	}
	return "#" + strconv.Itoa(*id)
}
