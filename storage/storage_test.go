package storage

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/competition-engine/models"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/logos/1.png", publicURL("https://cdn.example.com", "logos/1.png"))
	assert.Equal(t, "https://cdn.example.com/logos/1.png", publicURL("https://cdn.example.com/", "/logos/1.png"))
	assert.Equal(t, "https://cdn.example.com/media/logos/1.png", publicURL("https://cdn.example.com/media", "logos/1.png"))
	assert.Empty(t, publicURL("", "logos/1.png"))
	assert.Empty(t, publicURL("https://cdn.example.com", ""))
}

func TestR2ConfigEnabled(t *testing.T) {
	cfg := CloudflareR2UploaderConfig{AccountID: "a", AccessKeyID: "b", SecretAccessKey: "c", BucketName: "d", PublicBaseURL: "https://e"}
	assert.True(t, cfg.Enabled())
	cfg.BucketName = ""
	assert.False(t, cfg.Enabled())

	_, err := NewCloudflareR2Uploader(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrR2NotConfigured)
}

func TestMemoryUploader(t *testing.T) {
	ctx := context.Background()
	u := NewMemoryUploader("https://cdn.example.com")

	res, err := u.Upload(ctx, "a/b.txt", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a/b.txt", res.Location)

	data, contentType, ok := u.Object("a/b.txt")
	require.True(t, ok)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "text/plain", contentType)

	require.NoError(t, u.Delete(ctx, "a/b.txt"))
	_, _, ok = u.Object("a/b.txt")
	assert.False(t, ok)
}

func TestBracketArchiver(t *testing.T) {
	ctx := context.Background()
	u := NewMemoryUploader("https://cdn.example.com")
	a := NewBracketArchiver(u)

	champion := 7
	location, err := a.Archive(ctx, &BracketArchive{
		Competition: &models.Competition{ID: 3, Name: "Cup", ChampionClubID: &champion},
		Bracket:     &models.BracketGraph{CompetitionID: 3, Rounds: 2, FinalMatchID: 9},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/archives/competitions/3/final.json", location)

	data, contentType, ok := u.Object(ArchiveKey(3))
	require.True(t, ok)
	assert.Equal(t, "application/json", contentType)

	var doc BracketArchive
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 7, *doc.Competition.ChampionClubID)
	assert.Equal(t, 9, doc.Bracket.FinalMatchID)
	assert.False(t, doc.ArchivedAt.IsZero())

	_, err = a.Archive(ctx, &BracketArchive{})
	assert.Error(t, err)
}
