package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/competition-engine/brackets"
	"github.com/Dosada05/competition-engine/services"
)

type CompetitionHandler struct {
	competitionService services.CompetitionService
	bracketService     services.BracketService
	standingsService   services.StandingsService
	responder
}

func NewCompetitionHandler(
	cs services.CompetitionService,
	bs services.BracketService,
	ss services.StandingsService,
	logger *slog.Logger,
) *CompetitionHandler {
	return &CompetitionHandler{
		competitionService: cs,
		bracketService:     bs,
		standingsService:   ss,
		responder:          newResponder(logger),
	}
}

type buildBracketRequest struct {
	Participants     []brackets.SeededParticipant `json:"participants"`
	ConsolationMatch bool                         `json:"consolation_match"`
}

// CreateCompetition godoc
// @Summary Создать соревнование
// @Tags competitions
// @Accept json
// @Produce json
// @Param input body services.CreateCompetitionInput true "Соревнование"
// @Success 201 {object} models.Competition
// @Failure 409 {object} map[string]string "Имя уже занято"
// @Security BearerAuth
// @Router /competitions [post]
func (h *CompetitionHandler) CreateCompetition(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCompetitionInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	competition, err := h.competitionService.CreateCompetition(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, competition)
}

// CreateClub godoc
// @Summary Создать клуб
// @Tags clubs
// @Accept json
// @Produce json
// @Param input body services.CreateClubInput true "Клуб"
// @Success 201 {object} models.Club
// @Security BearerAuth
// @Router /clubs [post]
func (h *CompetitionHandler) CreateClub(w http.ResponseWriter, r *http.Request) {
	var input services.CreateClubInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	club, err := h.competitionService.CreateClub(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, club)
}

// @Summary Получить соревнование
// @Tags competitions
// @Produce json
// @Param competitionID path int true "Competition ID"
// @Success 200 {object} models.Competition
// @Failure 404 {object} map[string]string "Соревнование не найдено"
// @Router /competitions/{competitionID} [get]
func (h *CompetitionHandler) GetCompetition(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	competition, err := h.competitionService.GetCompetition(r.Context(), competitionID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, competition)
}

// @Summary Зарегистрировать клуб в соревновании
// @Tags participants
// @Accept json
// @Produce json
// @Param competitionID path int true "Competition ID"
// @Param input body services.RegisterParticipantInput true "Регистрация"
// @Success 201 {object} models.Participant
// @Security BearerAuth
// @Router /competitions/{competitionID}/participants [post]
func (h *CompetitionHandler) RegisterParticipant(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.RegisterParticipantInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	participant, err := h.competitionService.RegisterParticipant(r.Context(), competitionID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, participant)
}

// @Summary Список участников соревнования
// @Tags participants
// @Produce json
// @Param competitionID path int true "Competition ID"
// @Router /competitions/{competitionID}/participants [get]
func (h *CompetitionHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	participants, err := h.competitionService.ListParticipants(r.Context(), competitionID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"participants": participants})
}

// BuildBracket строит сетку из переданных участников или, если список пуст,
// из подтвержденных регистраций соревнования.
// @Summary Построить сетку на выбывание
// @Tags brackets
// @Accept json
// @Produce json
// @Param competitionID path int true "Competition ID"
// @Param input body buildBracketRequest true "Участники и матч за третье место"
// @Success 201 {object} models.BracketGraph
// @Failure 409 {object} map[string]string "Сетка уже построена"
// @Security BearerAuth
// @Router /competitions/{competitionID}/bracket [post]
func (h *CompetitionHandler) BuildBracket(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var req buildBracketRequest
	if err := readJSON(w, r, &req); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	opts := services.BuildOptions{ConsolationMatch: req.ConsolationMatch}
	if len(req.Participants) == 0 {
		graph, err := h.bracketService.BuildBracketFromRegistrations(r.Context(), competitionID, opts)
		if err != nil {
			h.mapServiceErrorToHTTP(w, r, err)
			return
		}
		h.respond(w, r, http.StatusCreated, graph)
		return
	}

	graph, err := h.bracketService.BuildBracket(r.Context(), competitionID, req.Participants, opts)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, graph)
}

// @Summary Составить календарь круговой лиги
// @Tags brackets
// @Produce json
// @Param competitionID path int true "Competition ID"
// @Security BearerAuth
// @Router /competitions/{competitionID}/fixtures [post]
func (h *CompetitionHandler) GenerateFixtures(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.GenerateFixtures(r.Context(), competitionID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, jsonResponse{"matches": matches})
}

// @Summary Сетка или календарь по раундам
// @Tags brackets
// @Produce json
// @Param competitionID path int true "Competition ID"
// @Success 200 {object} services.BracketView
// @Router /competitions/{competitionID}/bracket [get]
func (h *CompetitionHandler) GetBracket(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	view, err := h.competitionService.GetBracketView(r.Context(), competitionID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, view)
}

// @Summary Турнирная таблица лиги
// @Tags standings
// @Produce json
// @Param competitionID path int true "Competition ID"
// @Failure 422 {object} map[string]string "Соревнование не является лигой"
// @Router /competitions/{competitionID}/standings [get]
func (h *CompetitionHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	rows, err := h.standingsService.ComputeStandings(r.Context(), competitionID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"standings": rows})
}

// @Summary Победитель соревнования
// @Tags competitions
// @Produce json
// @Param competitionID path int true "Competition ID"
// @Failure 404 {object} map[string]string "Победитель еще не определен"
// @Router /competitions/{competitionID}/champion [get]
func (h *CompetitionHandler) GetChampion(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	champion, err := h.competitionService.GetChampion(r.Context(), competitionID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"champion": champion})
}
