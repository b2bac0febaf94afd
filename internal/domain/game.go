package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// NoSeat marks the absence of a seat, e.g. no input should take focus
const NoSeat = -1

// PendingLookup is a word waiting for the dictionary verdict.
// Token identifies it; a verdict carrying any other token is discarded.
type PendingLookup struct {
	Token     uint64 `json:"token"`
	Word      string `json:"word"`
	Seat      int    `json:"seat"`
	Remaining int    `json:"remaining"` // timer value when the word was submitted
}

// Game is the shiritori state machine for one two-player round.
// It is not safe for concurrent use; callers serialise access.
type Game struct {
	ID             string         `json:"id"`
	Players        [2]*Player     `json:"players"`
	CurrentTurn    int            `json:"currentTurn"`
	LastWord       string         `json:"lastWord"`
	TimerRemaining int            `json:"timerRemaining"`
	Phase          Phase          `json:"phase"`
	Message        string         `json:"message"`
	Pending        *PendingLookup `json:"pending,omitempty"`
	FocusSeat      int            `json:"focusSeat"`
	Rules          Rules          `json:"rules"`
	CreatedAt      time.Time      `json:"createdAt"`

	lastToken uint64
}

// NewGame creates a game in the NotStarted phase
func NewGame(id string, rules Rules, createdAt time.Time) *Game {
	g := &Game{
		ID:        id,
		Rules:     rules.withDefaults(),
		CreatedAt: createdAt,
	}
	g.reset([2]string{DefaultPlayerName(0), DefaultPlayerName(1)})
	return g
}

// reset puts every field back to its initial value, with fresh players
func (g *Game) reset(names [2]string) {
	for seat := range g.Players {
		g.Players[seat] = NewPlayer(names[seat], g.Rules.InitialScore)
	}
	g.CurrentTurn = 0
	g.LastWord = ""
	g.TimerRemaining = g.Rules.TurnSeconds
	g.Phase = PhaseNotStarted
	g.Message = ""
	g.Pending = nil
	g.FocusSeat = NoSeat
}

// SetPlayerName renames a seat
func (g *Game) SetPlayerName(seat int, name string) error {
	if seat < 0 || seat >= len(g.Players) {
		return ErrInvalidSeat
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultPlayerName(seat)
	}
	g.Players[seat].Name = name
	return nil
}

// Started returns true once Start has been called and until Restart
func (g *Game) Started() bool {
	return g.Phase != PhaseNotStarted
}

// Over returns true when a score has reached zero
func (g *Game) Over() bool {
	return g.Phase == PhaseGameOver
}

// PendingValidation returns true while a word is at the dictionary
func (g *Game) PendingValidation() bool {
	return g.Pending != nil
}

// ActivePlayer returns the player whose turn it is
func (g *Game) ActivePlayer() *Player {
	return g.Players[g.CurrentTurn]
}

// RequiredLetter returns the letter the next word must start with, or "" for the first word
func (g *Game) RequiredLetter() string {
	if g.LastWord == "" {
		return ""
	}
	r, _ := utf8.DecodeLastRuneInString(g.LastWord)
	return string(r)
}

// IsUsed checks both histories for a word
func (g *Game) IsUsed(word string) bool {
	for _, p := range g.Players {
		if p.HasUsed(word) {
			return true
		}
	}
	return false
}

// Start moves the game from NotStarted to InProgress
func (g *Game) Start() ([]Event, error) {
	if !g.Phase.CanTransitionTo(PhaseInProgress) {
		return nil, ErrInvalidPhase
	}

	g.Phase = PhaseInProgress
	g.TimerRemaining = g.Rules.TurnSeconds
	g.FocusSeat = g.CurrentTurn

	return []Event{event(EventGameStarted, &TurnSwappedPayload{
		CurrentTurn:    g.CurrentTurn,
		TimerRemaining: g.TimerRemaining,
	})}, nil
}

// Tick advances the countdown by one second, timing the turn out at zero
func (g *Game) Tick() []Event {
	if g.Phase != PhaseInProgress {
		return nil
	}

	if g.TimerRemaining > 0 {
		g.TimerRemaining--
	}

	events := []Event{event(EventTimerTick, &TimerTickPayload{TimerRemaining: g.TimerRemaining})}
	if g.TimerRemaining == 0 {
		events = append(events, g.timeout()...)
	}
	return events
}

// timeout awards the bonus to the active player and passes the turn
func (g *Game) timeout() []Event {
	events := g.cancelPending()

	seat := g.CurrentTurn
	g.Message = fmt.Sprintf(MsgTimeUp, g.Rules.TimeoutBonus)
	events = append(events,
		event(EventTurnTimedOut, &WordPayload{Seat: seat, Message: g.Message}),
		g.changeScore(seat, g.Rules.TimeoutBonus),
	)

	events = append(events, g.checkGameOver()...)
	if !g.Over() {
		events = append(events, g.swapTurn())
	}
	return events
}

// swapTurn hands the turn to the other seat with a fresh timer
func (g *Game) swapTurn() Event {
	g.CurrentTurn = 1 - g.CurrentTurn
	g.TimerRemaining = g.Rules.TurnSeconds
	g.FocusSeat = g.CurrentTurn

	return event(EventTurnSwapped, &TurnSwappedPayload{
		CurrentTurn:    g.CurrentTurn,
		TimerRemaining: g.TimerRemaining,
	})
}

// NormalizeWord trims surrounding whitespace and lowercases
func NormalizeWord(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// BeginSubmission runs the local checks on a word for the active seat.
// On success the word becomes the pending lookup and the caller must
// report the dictionary verdict through ResolveLookup.
func (g *Game) BeginSubmission(raw string) (*PendingLookup, []Event, error) {
	if g.Phase != PhaseInProgress {
		return nil, nil, ErrInvalidPhase
	}
	if g.Pending != nil {
		return nil, nil, ErrLookupPending
	}

	word := NormalizeWord(raw)
	seat := g.CurrentTurn

	if err := g.checkWord(word); err != nil {
		g.Message = err.Message
		return nil, []Event{event(EventWordRejected, &WordPayload{
			Seat:    seat,
			Word:    word,
			Message: err.Message,
		})}, err
	}

	g.lastToken++
	g.Pending = &PendingLookup{
		Token:     g.lastToken,
		Word:      word,
		Seat:      seat,
		Remaining: g.TimerRemaining,
	}
	g.Message = MsgCheckingWord

	pending := *g.Pending
	return &pending, []Event{event(EventWordChecking, &WordPayload{Seat: seat, Word: word})}, nil
}

// checkWord applies length, reuse and chaining rules in that order
func (g *Game) checkWord(word string) *RejectionError {
	if utf8.RuneCountInString(word) < g.Rules.MinWordLength {
		return reject(ErrWordTooShort, fmt.Sprintf(MsgTooShort, g.Rules.MinWordLength))
	}

	if g.IsUsed(word) {
		return reject(ErrWordAlreadyUsed, MsgAlreadyUsed)
	}

	if g.LastWord != "" {
		last, _ := utf8.DecodeLastRuneInString(g.LastWord)
		first, _ := utf8.DecodeRuneInString(word)
		if first != last {
			return reject(ErrWrongStartLetter, fmt.Sprintf(MsgWrongStart, last))
		}
	}

	return nil
}

// ResolveLookup applies the dictionary verdict for a pending word
func (g *Game) ResolveLookup(token uint64, valid bool) ([]Event, error) {
	if g.Pending == nil || g.Pending.Token != token {
		return nil, ErrStaleLookup
	}

	pending := g.Pending
	g.Pending = nil
	player := g.Players[pending.Seat]

	if !valid {
		g.Message = MsgNotInDictionary
		events := []Event{
			event(EventWordInvalid, &WordPayload{
				Seat:    pending.Seat,
				Word:    pending.Word,
				Message: g.Message,
				Cost:    g.Rules.LookupPenalty,
			}),
			g.changeScore(pending.Seat, -g.Rules.LookupPenalty),
		}
		return append(events, g.checkGameOver()...), nil
	}

	cost := WordCost(pending.Word, g.Rules.TurnSeconds, pending.Remaining)
	player.AddWord(pending.Word)
	g.LastWord = pending.Word
	g.Message = ""

	events := []Event{
		event(EventWordAccepted, &WordPayload{Seat: pending.Seat, Word: pending.Word, Cost: cost}),
		g.changeScore(pending.Seat, -cost),
	}
	events = append(events, g.checkGameOver()...)
	if !g.Over() {
		events = append(events, g.swapTurn())
	}
	return events, nil
}

// WordCost is the score deducted for an accepted word: its length plus
// the seconds spent on the turn before it was submitted
func WordCost(word string, turnSeconds, remaining int) int {
	return utf8.RuneCountInString(word) + (turnSeconds - remaining)
}

// Restart discards the round and returns to NotStarted. Seat names survive.
func (g *Game) Restart() []Event {
	events := g.cancelPending()
	g.reset([2]string{g.Players[0].Name, g.Players[1].Name})
	return append(events, event(EventGameRestarted, nil))
}

// Abandon drops the pending lookup without touching scores or the turn,
// for when the game is being torn down
func (g *Game) Abandon() []Event {
	return g.cancelPending()
}

// cancelPending drops the pending lookup, if any
func (g *Game) cancelPending() []Event {
	if g.Pending == nil {
		return nil
	}
	pending := g.Pending
	g.Pending = nil
	return []Event{event(EventLookupCanceled, &LookupCanceledPayload{
		Token: pending.Token,
		Word:  pending.Word,
	})}
}

// changeScore moves a seat's score by delta
func (g *Game) changeScore(seat, delta int) Event {
	g.Players[seat].Score += delta
	return event(EventScoreChanged, &ScoreChangedPayload{
		Seat:  seat,
		Delta: delta,
		Score: g.Players[seat].Score,
	})
}

// checkGameOver ends the game as soon as any score is at or below zero.
// Every transition that changes a score calls it before returning.
func (g *Game) checkGameOver() []Event {
	if g.Phase != PhaseInProgress {
		return nil
	}
	if g.Players[0].Score > 0 && g.Players[1].Score > 0 {
		return nil
	}

	events := g.cancelPending()
	g.Phase = PhaseGameOver
	g.FocusSeat = NoSeat

	winner, _ := g.Winner()
	return append(events, event(EventGameOver, &GameOverPayload{
		Winner: winner,
		Name:   g.Players[winner].Name,
	}))
}

// Winner returns the winning seat once the game is over
func (g *Game) Winner() (int, bool) {
	if g.Phase != PhaseGameOver {
		return NoSeat, false
	}

	zero0 := g.Players[0].Score <= 0
	zero1 := g.Players[1].Score <= 0

	if g.Rules.WinRule == WinFirstToZero {
		if zero0 {
			return 0, true
		}
		return 1, true
	}

	// Last standing; when both are out seat 0's opponent takes it
	if zero0 {
		return 1, true
	}
	if zero1 {
		return 0, true
	}
	return NoSeat, false
}

// Snapshot is the read-only view handed to the display
type Snapshot struct {
	ID                string    `json:"id"`
	Players           []*Player `json:"players"`
	CurrentTurn       int       `json:"currentTurn"`
	LastWord          string    `json:"lastWord"`
	RequiredLetter    string    `json:"requiredLetter"`
	TimerRemaining    int       `json:"timerRemaining"`
	TurnSeconds       int       `json:"turnSeconds"`
	MinWordLength     int       `json:"minWordLength"`
	Phase             Phase     `json:"phase"`
	Started           bool      `json:"started"`
	Over              bool      `json:"over"`
	PendingValidation bool      `json:"pendingValidation"`
	Message           string    `json:"message"`
	FocusSeat         int       `json:"focusSeat"`
	Winner            *int      `json:"winner,omitempty"`
}

// Snapshot copies the current state
func (g *Game) Snapshot() *Snapshot {
	players := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, p.Clone())
	}

	s := &Snapshot{
		ID:                g.ID,
		Players:           players,
		CurrentTurn:       g.CurrentTurn,
		LastWord:          g.LastWord,
		RequiredLetter:    g.RequiredLetter(),
		TimerRemaining:    g.TimerRemaining,
		TurnSeconds:       g.Rules.TurnSeconds,
		MinWordLength:     g.Rules.MinWordLength,
		Phase:             g.Phase,
		Started:           g.Started(),
		Over:              g.Over(),
		PendingValidation: g.PendingValidation(),
		Message:           g.Message,
		FocusSeat:         g.FocusSeat,
	}
	if winner, ok := g.Winner(); ok {
		s.Winner = &winner
	}
	return s
}
