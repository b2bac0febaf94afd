package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"shiritori/internal/app"
)

// Handler handles WebSocket connections
type Handler struct {
	hub      *app.GameHub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *app.GameHub, logger *slog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The page and the socket may be served from different hosts in development
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests. Anyone may connect and
// watch; a seat is taken with a join_game message.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomCode := r.URL.Query().Get("roomCode")
	if roomCode == "" {
		http.Error(w, "roomCode is required", http.StatusBadRequest)
		return
	}

	// A returning player presents the ID from their earlier connected message
	playerID := r.URL.Query().Get("playerId")
	isReconnect := playerID != ""
	if !isReconnect {
		playerID = uuid.New().String()
	}

	session, err := h.hub.GetSession(roomCode)
	if err != nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	previous, hadPrevious := session.GetClient(playerID)

	client := NewClient(conn, session, playerID, h.logger)
	session.RegisterClient(playerID, client)

	// A page reload opens the new socket before the old one notices it is gone
	if hadPrevious {
		h.logger.Debug("closing superseded connection", "playerID", playerID)
		previous.Close()
	}

	h.logger.Info("websocket connected",
		"roomCode", session.GetRoomCode(),
		"playerID", playerID,
		"isReconnect", isReconnect,
	)

	client.sendConnected()
	client.Run()
}
