package ws

import (
	"errors"
	"time"

	"shiritori/internal/app"
	"shiritori/internal/domain"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgJoinGame    MessageType = "join_game"
	MsgStartGame   MessageType = "start_game"
	MsgSubmitWord  MessageType = "submit_word"
	MsgRestartGame MessageType = "restart_game"
	MsgPing        MessageType = "ping"
)

// Server → Client message types
const (
	MsgConnected MessageType = "connected"
	MsgGameEvent MessageType = "game_event"
	MsgError     MessageType = "error"
	MsgPong      MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Server message payloads

// ConnectedPayload is the payload for connected message
type ConnectedPayload struct {
	PlayerID  string           `json:"playerId"`
	GameID    string           `json:"gameId"`
	Seats     []int            `json:"seats"`
	GameState *domain.Snapshot `json:"gameState"`
}

// GameEventPayload wraps a session event
type GameEventPayload struct {
	Event *domain.GameEvent `json:"event"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeGameNotFound   = "GAME_NOT_FOUND"
	ErrCodeGameFull       = "GAME_FULL"
	ErrCodeNotSeated      = "NOT_SEATED"
	ErrCodeNotYourTurn    = "NOT_YOUR_TURN"
	ErrCodeLookupPending  = "LOOKUP_PENDING"
	ErrCodeWordRejected   = "WORD_REJECTED"
	ErrCodeInvalidAction  = "INVALID_ACTION"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// errorFor maps a session error to the code and message sent to the client
func errorFor(err error) *ErrorPayload {
	var rejection *domain.RejectionError
	switch {
	case errors.As(err, &rejection):
		return &ErrorPayload{Code: ErrCodeWordRejected, Message: rejection.Message}
	case errors.Is(err, domain.ErrGameFull):
		return &ErrorPayload{Code: ErrCodeGameFull, Message: "Both seats are taken"}
	case errors.Is(err, domain.ErrGameNotFound):
		return &ErrorPayload{Code: ErrCodeGameNotFound, Message: "Game not found"}
	case errors.Is(err, domain.ErrNotSeated):
		return &ErrorPayload{Code: ErrCodeNotSeated, Message: "Join the game first"}
	case errors.Is(err, domain.ErrNotYourTurn):
		return &ErrorPayload{Code: ErrCodeNotYourTurn, Message: "It's not your turn"}
	case errors.Is(err, domain.ErrLookupPending):
		return &ErrorPayload{Code: ErrCodeLookupPending, Message: domain.MsgCheckingWord}
	case errors.Is(err, domain.ErrInvalidPhase):
		return &ErrorPayload{Code: ErrCodeInvalidAction, Message: "Not allowed right now"}
	default:
		return &ErrorPayload{Code: ErrCodeInternalError, Message: err.Error()}
	}
}

// connectedPayload builds the connected message body from a player's view
func connectedPayload(session *app.GameSession, playerID string) *ConnectedPayload {
	view := session.GetPlayerView(playerID)
	return &ConnectedPayload{
		PlayerID:  playerID,
		GameID:    session.GetRoomCode(),
		Seats:     view.Seats,
		GameState: view.Game,
	}
}
