package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/competition-engine/models"
)

// BracketArchive is the document written once a competition has a champion.
type BracketArchive struct {
	Competition *models.Competition   `json:"competition"`
	Bracket     *models.BracketGraph  `json:"bracket,omitempty"`
	Standings   []models.StandingsRow `json:"standings,omitempty"`
	ArchivedAt  time.Time             `json:"archived_at"`
}

// BracketArchiver uploads final competition documents as JSON.
type BracketArchiver struct {
	uploader FileUploader
}

func NewBracketArchiver(uploader FileUploader) *BracketArchiver {
	return &BracketArchiver{uploader: uploader}
}

// ArchiveKey returns the object key of a competition's archive.
func ArchiveKey(competitionID int) string {
	return fmt.Sprintf("archives/competitions/%d/final.json", competitionID)
}

// Archive uploads doc and returns its public location.
func (a *BracketArchiver) Archive(ctx context.Context, doc *BracketArchive) (string, error) {
	if doc == nil || doc.Competition == nil {
		return "", fmt.Errorf("archive document has no competition")
	}
	if doc.ArchivedAt.IsZero() {
		doc.ArchivedAt = time.Now().UTC()
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode archive for competition %d: %w", doc.Competition.ID, err)
	}

	result, err := a.uploader.Upload(ctx, ArchiveKey(doc.Competition.ID), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return result.Location, nil
}
