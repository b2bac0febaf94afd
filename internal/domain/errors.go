package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameFull         = errors.New("game is full")
	ErrInvalidPhase     = errors.New("invalid action for current phase")
	ErrNotYourTurn      = errors.New("not your turn to submit")
	ErrNotSeated        = errors.New("player has no seat in this game")
	ErrInvalidSeat      = errors.New("invalid seat")
	ErrLookupPending    = errors.New("a word is already being checked")
	ErrStaleLookup      = errors.New("lookup result no longer applies")
	ErrWordTooShort     = errors.New("word too short")
	ErrWordAlreadyUsed  = errors.New("word already used")
	ErrWrongStartLetter = errors.New("word does not continue the chain")
)

// Messages shown to players
const (
	MsgCheckingWord    = "Checking word..."
	MsgTimeUp          = "Time up! +%d points added."
	MsgTooShort        = "Word must be at least %d letters."
	MsgAlreadyUsed     = "Word already used."
	MsgWrongStart      = "Word must start with '%c'."
	MsgNotInDictionary = "Not a valid English word. Try again!"
)

// RejectionError is returned when a submitted word fails a local check.
// It never costs points.
type RejectionError struct {
	Reason  error
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%v: %s", e.Reason, e.Message)
}

func (e *RejectionError) Unwrap() error {
	return e.Reason
}

func reject(reason error, message string) *RejectionError {
	return &RejectionError{Reason: reason, Message: message}
}
