package domain

import "time"

// EventType represents the type of game event
type EventType string

const (
	EventPlayerJoined   EventType = "PLAYER_JOINED"
	EventPlayerLeft     EventType = "PLAYER_LEFT"
	EventGameStarted    EventType = "GAME_STARTED"
	EventTimerTick      EventType = "TIMER_TICK"
	EventTurnTimedOut   EventType = "TURN_TIMED_OUT"
	EventTurnSwapped    EventType = "TURN_SWAPPED"
	EventWordRejected   EventType = "WORD_REJECTED"
	EventWordChecking   EventType = "WORD_CHECKING"
	EventWordAccepted   EventType = "WORD_ACCEPTED"
	EventWordInvalid    EventType = "WORD_INVALID"
	EventLookupCanceled EventType = "LOOKUP_CANCELED"
	EventScoreChanged   EventType = "SCORE_CHANGED"
	EventGameOver       EventType = "GAME_OVER"
	EventGameRestarted  EventType = "GAME_RESTARTED"
)

// Event is one entry in the mutation log returned by a transition
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// GameEvent represents an event that occurred in the game, ready to broadcast
type GameEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	GameID    string      `json:"gameId"`
	PlayerID  string      `json:"playerId,omitempty"` // If event is player-specific
	Payload   interface{} `json:"payload,omitempty"`
	State     *Snapshot   `json:"state,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Payload types for different events

// ScoreChangedPayload is logged whenever a score moves
type ScoreChangedPayload struct {
	Seat  int `json:"seat"`
	Delta int `json:"delta"`
	Score int `json:"score"`
}

// TurnSwappedPayload is logged when the active seat flips
type TurnSwappedPayload struct {
	CurrentTurn    int `json:"currentTurn"`
	TimerRemaining int `json:"timerRemaining"`
}

// TimerTickPayload is logged on every countdown step
type TimerTickPayload struct {
	TimerRemaining int `json:"timerRemaining"`
}

// WordPayload is logged for checking, accepted, rejected and invalid words
type WordPayload struct {
	Seat    int    `json:"seat"`
	Word    string `json:"word"`
	Message string `json:"message,omitempty"`
	Cost    int    `json:"cost,omitempty"`
}

// LookupCanceledPayload is logged when a pending lookup is abandoned
type LookupCanceledPayload struct {
	Token uint64 `json:"token"`
	Word  string `json:"word"`
}

// GameOverPayload is logged when a score reaches zero
type GameOverPayload struct {
	Winner int    `json:"winner"`
	Name   string `json:"name"`
}

// SeatPayload is logged when a client takes or leaves seats
type SeatPayload struct {
	PlayerID string `json:"playerId"`
	Seats    []int  `json:"seats"`
	Name     string `json:"name,omitempty"`
}

func event(t EventType, payload interface{}) Event {
	return Event{Type: t, Payload: payload}
}
