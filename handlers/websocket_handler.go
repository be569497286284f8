package handlers

import (
	"log/slog"
	"net/http"

	"github.com/football-investment/practice-booking-system-sub021/metrics"
	"github.com/football-investment/practice-booking-system-sub021/progress"
	"github.com/football-investment/practice-booking-system-sub021/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict Origin once the frontend domain is fixed.
		return true
	},
}

type WebSocketHandler struct {
	hub               *progress.Hub
	tournamentService services.TournamentService
	metrics           metrics.Metrics
}

func NewWebSocketHandler(hub *progress.Hub, ts services.TournamentService, collector metrics.Metrics) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		metrics:           collector,
	}
}

// ServeWs upgrades the connection and subscribes the client to the lifecycle
// events of one tournament. Clients connect to /ws/tournaments/{tournamentID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.tournamentService.GetTournamentByID(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		slog.Warn("websocket upgrade failed",
			slog.Int("tournament_id", tournamentID),
			slog.Any("error", err),
		)
		return
	}

	client := &progress.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: progress.TournamentRoom(tournamentID),
	}
	client.Hub.Register <- client
	h.metrics.IncWSConnections()

	go client.WritePump()
	go func() {
		// ReadPump returns when the connection closes.
		client.ReadPump()
		h.metrics.DecWSConnections()
	}()

	slog.Debug("websocket client registered", slog.String("room", client.Room))
}
