package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/competition-engine/middleware"
	"github.com/Dosada05/competition-engine/services"
)

type MatchHandler struct {
	resultService services.ResultService
	responder
}

func NewMatchHandler(rs services.ResultService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{
		resultService: rs,
		responder:     newResponder(logger),
	}
}

// RecordResult godoc
// @Summary Записать или исправить результат матча
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param result body services.MatchResult true "Счет матча"
// @Success 200 {object} services.ResultUpdate
// @Failure 400 {object} map[string]string "Некорректный запрос"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "Исправление затрагивает сыгранные матчи"
// @Failure 422 {object} map[string]string "Недопустимый счет или матч не готов"
// @Security BearerAuth
// @Router /matches/{matchID}/result [post]
func (h *MatchHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var result services.MatchResult
	if err := readJSON(w, r, &result); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	ctx, ok := h.actorContext(w, r)
	if !ok {
		return
	}
	update, err := h.resultService.RecordResult(ctx, matchID, result)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, update)
}

// ResetResult очищает результат матча. ?cascade=true сбрасывает и сыгранные матчи ниже по сетке.
// @Summary Сбросить результат матча
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Param cascade query bool false "Сбросить и сыгранные матчи ниже по сетке"
// @Success 200 {object} services.ResultUpdate
// @Failure 409 {object} map[string]string "Ниже по сетке есть сыгранные матчи"
// @Security BearerAuth
// @Router /matches/{matchID}/result [delete]
func (h *MatchHandler) ResetResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	cascade := false
	if raw := r.URL.Query().Get("cascade"); raw != "" {
		cascade, err = strconv.ParseBool(raw)
		if err != nil {
			h.badRequestResponse(w, r, fmt.Errorf("invalid cascade value: %q", raw))
			return
		}
	}

	ctx, ok := h.actorContext(w, r)
	if !ok {
		return
	}
	update, err := h.resultService.ResetResult(ctx, matchID, cascade)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, update)
}

// actorContext attaches the authenticated operator to the request context.
func (h *MatchHandler) actorContext(w http.ResponseWriter, r *http.Request) (context.Context, bool) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.errorResponse(w, r, http.StatusUnauthorized, "failed to identify current user")
		return nil, false
	}
	return services.WithActor(r.Context(), currentUserID), true
}
