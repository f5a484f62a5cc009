package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/competition-engine/brackets"
	"github.com/Dosada05/competition-engine/services"
)

type WebSocketHandler struct {
	hub                *brackets.Hub
	competitionService services.CompetitionService
	upgrader           websocket.Upgrader
	responder
}

// NewWebSocketHandler принимает список разрешенных Origin; "*" разрешает все.
func NewWebSocketHandler(hub *brackets.Hub, cs services.CompetitionService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:                hub,
		competitionService: cs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		responder: newResponder(logger),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// ServeWs подписывает клиента на обновления сетки соревнования.
// Клиент должен подключаться к /ws/competitions/{competitionID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if _, err := h.competitionService.GetCompetition(r.Context(), competitionID); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту, так что здесь просто логируем.
		h.logger.Warn("failed to upgrade websocket connection",
			slog.Int("competition_id", competitionID),
			slog.Any("error", err))
		return
	}

	client := h.hub.NewClient(conn, brackets.RoomForCompetition(competitionID))
	h.hub.Register <- client

	// Горутины работают, пока клиент не отключится.
	go client.WritePump()
	go client.ReadPump()
}
