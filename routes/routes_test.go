package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/competition-engine/brackets"
	"github.com/Dosada05/competition-engine/cache"
	"github.com/Dosada05/competition-engine/handlers"
	"github.com/Dosada05/competition-engine/metrics"
	"github.com/Dosada05/competition-engine/middleware"
	"github.com/Dosada05/competition-engine/models"
	"github.com/Dosada05/competition-engine/repositories"
	"github.com/Dosada05/competition-engine/services"
	"github.com/Dosada05/competition-engine/storage"
)

const testSecret = "routes-test-secret"

type apiClient struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repositories.NewMemoryStore()
	registry := prometheus.NewRegistry()
	m := metrics.NewService(registry)
	hub := brackets.NewHub(logger)
	standingsCache := cache.NewMemoryStandingsCache()
	uploader := storage.NewMemoryUploader("https://cdn.example.com")
	directory := services.NewClubDirectory(store, uploader)

	competitionService := services.NewCompetitionService(store, directory, logger)
	bracketService := services.NewBracketService(store, hub, m, logger)
	resultService := services.NewResultService(store, standingsCache, hub, storage.NewBracketArchiver(uploader), m, logger)
	standingsService := services.NewStandingsService(store, standingsCache, directory, m, logger)

	router := chi.NewRouter()
	SetupRoutes(router,
		Options{
			JWTSecret:      testSecret,
			AllowedOrigins: []string{"*"},
			MetricsHandler: metrics.NewMetricsHandler(registry),
			RequestLogger:  middleware.Logger(logger),
		},
		handlers.NewCompetitionHandler(competitionService, bracketService, standingsService, logger),
		handlers.NewMatchHandler(resultService, logger),
		handlers.NewWebSocketHandler(hub, competitionService, []string{"*"}, logger),
		handlers.NewHealthHandler(nil, logger),
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	token, err := middleware.IssueToken(testSecret, 1, models.RoleOrganizer, time.Hour)
	require.NoError(t, err)
	return &apiClient{t: t, server: server, token: token}
}

func (c *apiClient) do(method, path, token string, body interface{}) (int, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, out
}

func (c *apiClient) mustDo(method, path string, body interface{}, wantStatus int, dst interface{}) {
	c.t.Helper()
	status, raw := c.do(method, path, c.token, body)
	require.Equal(c.t, wantStatus, status, "%s %s: %s", method, path, raw)
	if dst != nil {
		require.NoError(c.t, json.Unmarshal(raw, dst))
	}
}

func TestPublicEndpoints(t *testing.T) {
	api := newAPI(t)

	status, body := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"ok"`)

	status, body = api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "competition_propagation_conflicts_total")

	status, _ = api.do(http.MethodGet, "/competitions/999", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(http.MethodGet, "/competitions/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = api.do(http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, status)
	var doc struct {
		Paths map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Contains(t, doc.Paths, "/matches/{matchID}/result")
	assert.Contains(t, doc.Paths, "/competitions/{competitionID}/standings")
}

func TestMutatingRoutesRequireOrganizer(t *testing.T) {
	api := newAPI(t)
	input := map[string]interface{}{"name": "Cup", "format": "single_elimination"}

	status, _ := api.do(http.MethodPost, "/competitions", "", input)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.do(http.MethodPost, "/competitions", "not-a-token", input)
	assert.Equal(t, http.StatusUnauthorized, status)

	viewer, err := middleware.IssueToken(testSecret, 2, models.RoleViewer, time.Hour)
	require.NoError(t, err)
	status, _ = api.do(http.MethodPost, "/competitions", viewer, input)
	assert.Equal(t, http.StatusForbidden, status)

	forged, err := middleware.IssueToken("other-secret", 1, models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	status, _ = api.do(http.MethodPost, "/competitions", forged, input)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.do(http.MethodPost, "/competitions", api.token, input)
	assert.Equal(t, http.StatusCreated, status)

	status, _ = api.do(http.MethodPost, "/competitions", api.token, input)
	assert.Equal(t, http.StatusConflict, status)
}

func TestKnockoutFlow(t *testing.T) {
	api := newAPI(t)

	var competition models.Competition
	api.mustDo(http.MethodPost, "/competitions",
		map[string]interface{}{"name": "Spring Cup", "format": "single_elimination"},
		http.StatusCreated, &competition)
	base := fmt.Sprintf("/competitions/%d", competition.ID)

	clubIDs := make([]int, 0, 3)
	for i := 1; i <= 3; i++ {
		var club models.Club
		api.mustDo(http.MethodPost, "/clubs", map[string]interface{}{"name": fmt.Sprintf("Club %d", i)}, http.StatusCreated, &club)
		clubIDs = append(clubIDs, club.ID)
		api.mustDo(http.MethodPost, base+"/participants",
			map[string]interface{}{"club_id": club.ID, "seed_number": i, "confirmed": true},
			http.StatusCreated, nil)
	}

	var graph models.BracketGraph
	api.mustDo(http.MethodPost, base+"/bracket", map[string]interface{}{}, http.StatusCreated, &graph)
	require.Equal(t, 2, graph.Rounds)
	require.Len(t, graph.Matches, 3)

	status, _ := api.do(http.MethodPost, base+"/bracket", api.token, map[string]interface{}{})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(http.MethodPost, base+"/participants", api.token,
		map[string]interface{}{"club_id": clubIDs[0], "seed_number": 9, "confirmed": true})
	assert.Equal(t, http.StatusConflict, status)

	// Seed 1 has the bye; seeds 2 and 3 meet at position 2.
	semi := graph.MatchAt(2, 2)
	require.NotNil(t, semi)
	semiPath := fmt.Sprintf("/matches/%d/result", semi.ID)
	finalPath := fmt.Sprintf("/matches/%d/result", graph.FinalMatchID)

	status, _ = api.do(http.MethodPost, semiPath, api.token, map[string]interface{}{"home_score": 1, "away_score": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = api.do(http.MethodPost, semiPath, api.token, map[string]interface{}{"home_score": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = api.do(http.MethodPost, semiPath, api.token, map[string]interface{}{"home_score": 1, "away_score": 0, "extra": true})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodPost, finalPath, api.token, map[string]interface{}{"home_score": 1, "away_score": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, status, "final is not ready before the semifinal")

	var update services.ResultUpdate
	api.mustDo(http.MethodPost, semiPath, map[string]interface{}{"home_score": 2, "away_score": 0}, http.StatusOK, &update)
	require.NotNil(t, update.Match.WinnerClubID)
	assert.Equal(t, clubIDs[1], *update.Match.WinnerClubID)
	require.NotNil(t, update.ActorUserID, "the result carries the operator from the token")
	assert.Equal(t, 1, *update.ActorUserID)

	status, _ = api.do(http.MethodGet, base+"/champion", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	api.mustDo(http.MethodPost, finalPath, map[string]interface{}{"home_score": 0, "away_score": 3}, http.StatusOK, &update)
	assert.True(t, update.ChampionDecided)

	var champion struct {
		Champion models.Club `json:"champion"`
	}
	api.mustDo(http.MethodGet, base+"/champion", nil, http.StatusOK, &champion)
	assert.Equal(t, clubIDs[1], champion.Champion.ID)
	assert.Equal(t, "Club 2", champion.Champion.Name)

	status, _ = api.do(http.MethodDelete, semiPath, api.token, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(http.MethodDelete, semiPath+"?cascade=maybe", api.token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	admin, err := middleware.IssueToken(testSecret, 7, models.RoleAdmin, time.Hour)
	require.NoError(t, err)
	status, body := api.do(http.MethodDelete, semiPath+"?cascade=true", admin, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	update = services.ResultUpdate{}
	require.NoError(t, json.Unmarshal(body, &update))
	assert.Nil(t, update.Match.WinnerClubID)
	require.NotNil(t, update.ActorUserID)
	assert.Equal(t, 7, *update.ActorUserID)

	status, _ = api.do(http.MethodGet, base+"/champion", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	var view services.BracketView
	api.mustDo(http.MethodGet, base+"/bracket", nil, http.StatusOK, &view)
	require.Len(t, view.Rounds, 2)
	assert.Equal(t, "Semifinals", view.Rounds[0].Name)
	assert.Equal(t, "Final", view.Rounds[1].Name)

	status, _ = api.do(http.MethodGet, base+"/standings", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestLeagueFlow(t *testing.T) {
	api := newAPI(t)

	var competition models.Competition
	api.mustDo(http.MethodPost, "/competitions",
		map[string]interface{}{"name": "Autumn League", "format": "round_robin"},
		http.StatusCreated, &competition)
	base := fmt.Sprintf("/competitions/%d", competition.ID)

	for i := 1; i <= 2; i++ {
		var club models.Club
		api.mustDo(http.MethodPost, "/clubs", map[string]interface{}{"name": fmt.Sprintf("League Club %d", i)}, http.StatusCreated, &club)
		api.mustDo(http.MethodPost, base+"/participants",
			map[string]interface{}{"club_id": club.ID, "seed_number": i, "confirmed": true},
			http.StatusCreated, nil)
	}

	var participants struct {
		Participants []models.Participant `json:"participants"`
	}
	api.mustDo(http.MethodGet, base+"/participants", nil, http.StatusOK, &participants)
	assert.Len(t, participants.Participants, 2)

	var fixtures struct {
		Matches []models.Match `json:"matches"`
	}
	api.mustDo(http.MethodPost, base+"/fixtures", nil, http.StatusCreated, &fixtures)
	require.Len(t, fixtures.Matches, 1)

	status, _ := api.do(http.MethodPost, base+"/fixtures", api.token, nil)
	assert.Equal(t, http.StatusConflict, status)

	api.mustDo(http.MethodPost, fmt.Sprintf("/matches/%d/result", fixtures.Matches[0].ID),
		map[string]interface{}{"home_score": 2, "away_score": 2}, http.StatusOK, nil)

	var standings struct {
		Standings []models.StandingsRow `json:"standings"`
	}
	api.mustDo(http.MethodGet, base+"/standings", nil, http.StatusOK, &standings)
	require.Len(t, standings.Standings, 2)
	for _, row := range standings.Standings {
		assert.Equal(t, 1, row.Points)
		assert.Equal(t, 1, row.Drawn)
	}

	status, body := api.do(http.MethodGet, base+"/bracket", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(string(body), "Matchday 1"))
}
