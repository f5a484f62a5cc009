package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/competition-engine/models"
	"github.com/Dosada05/competition-engine/repositories"
	"github.com/Dosada05/competition-engine/storage"
)

// ClubDirectory supplies club display data. The engine only uses it to
// enrich its output; a club missing from the directory is not an error.
type ClubDirectory interface {
	Lookup(ctx context.Context, clubIDs []int) (map[int]*models.Club, error)
}

type clubDirectory struct {
	store    repositories.Store
	uploader storage.FileUploader
}

// NewClubDirectory reads clubs from store and resolves logo keys through
// uploader. uploader may be nil, in which case LogoURL stays empty.
func NewClubDirectory(store repositories.Store, uploader storage.FileUploader) ClubDirectory {
	return &clubDirectory{store: store, uploader: uploader}
}

func (d *clubDirectory) Lookup(ctx context.Context, clubIDs []int) (map[int]*models.Club, error) {
	out := make(map[int]*models.Club, len(clubIDs))
	if len(clubIDs) == 0 {
		return out, nil
	}
	clubs, err := d.store.Clubs().ListByIDs(ctx, clubIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %d clubs: %w", len(clubIDs), err)
	}
	for _, c := range clubs {
		populateClubLogoURLFunc(c, d.uploader)
		out[c.ID] = c
	}
	return out, nil
}

func populateClubLogoURLFunc(club *models.Club, uploader storage.FileUploader) {
	if club != nil && club.LogoKey != nil && *club.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*club.LogoKey)
		if url != "" {
			club.LogoURL = &url
		}
	}
}

// clubIDsOf collects the distinct clubs referenced by matches.
func clubIDsOf(matches []*models.Match) []int {
	seen := make(map[int]bool)
	ids := make([]int, 0)
	add := func(id *int) {
		if id != nil && !seen[*id] {
			seen[*id] = true
			ids = append(ids, *id)
		}
	}
	for _, m := range matches {
		add(m.HomeClubID)
		add(m.AwayClubID)
	}
	return ids
}
