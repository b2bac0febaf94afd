package app

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"shiritori/internal/common/clock"
	"shiritori/internal/dictionary"
	"shiritori/internal/domain"
)

// DefaultTickInterval is the length of one countdown second
const DefaultTickInterval = time.Second

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	GetPlayerID() string
	Close() error
}

// SessionConfig holds the collaborators of a game session
type SessionConfig struct {
	Lookup dictionary.Lookup
	Clock  clock.Clock
	Logger *slog.Logger

	// TickInterval is the countdown step. Zero disables the countdown
	// goroutine; Tick must then be called by hand.
	TickInterval time.Duration
}

// GameSession wraps a game with concurrency control, the turn timer,
// dictionary lookups and client management
type GameSession struct {
	game      *domain.Game
	mu        sync.RWMutex
	seats     map[string][]int            // playerID -> seats held
	clients   map[string]ClientConnection // playerID -> client
	clientsMu sync.RWMutex

	lookup dictionary.Lookup
	clock  clock.Clock
	logger *slog.Logger

	// Timer
	tickInterval  time.Duration
	countdownDone chan struct{}
	rearm         chan struct{}
	armedAt       time.Time // ticks fired before this belong to the previous turn

	// In-flight lookup
	ctx          context.Context
	cancel       context.CancelFunc
	lookupToken  uint64
	lookupCancel context.CancelFunc
	lookups      sync.WaitGroup

	// Event channel for broadcasting
	events chan *domain.GameEvent
	done   chan struct{}
}

// NewGameSession creates a new game session
func NewGameSession(game *domain.Game, cfg *SessionConfig) (*GameSession, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Lookup == nil {
		return nil, errors.New("lookup cannot be nil")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = &clock.DefaultClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	session := &GameSession{
		game:         game,
		seats:        make(map[string][]int),
		clients:      make(map[string]ClientConnection),
		lookup:       cfg.Lookup,
		clock:        clk,
		logger:       logger.With("roomCode", game.ID),
		tickInterval: cfg.TickInterval,
		rearm:        make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
		events:       make(chan *domain.GameEvent, 100),
		done:         make(chan struct{}),
	}

	// Start event broadcaster
	go session.eventLoop()

	return session, nil
}

// GetRoomCode returns the room code
func (s *GameSession) GetRoomCode() string {
	return s.game.ID
}

// GetCreatedAt returns when the game was created
func (s *GameSession) GetCreatedAt() time.Time {
	return s.game.CreatedAt
}

// GetPlayerCount returns the number of clients holding a seat
func (s *GameSession) GetPlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seats)
}

// GetClientCount returns the number of connected clients
func (s *GameSession) GetClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// GetPhase returns the current game phase
func (s *GameSession) GetPhase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Phase
}

// CanJoin checks if a seat is still free
func (s *GameSession) CanJoin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.freeSeatsLocked()) > 0
}

// GetSnapshot returns a copy of the game state
func (s *GameSession) GetSnapshot() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.Snapshot()
}

// PlayerView is the state a client needs on (re)connect
type PlayerView struct {
	Seats []int            `json:"seats"`
	Game  *domain.Snapshot `json:"game"`
}

// GetPlayerView returns the game state and the seats held by a player
func (s *GameSession) GetPlayerView(playerID string) *PlayerView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seats := slices.Clone(s.seats[playerID])
	if seats == nil {
		seats = []int{}
	}
	return &PlayerView{
		Seats: seats,
		Game:  s.game.Snapshot(),
	}
}

// RegisterClient registers a client connection for a player
func (s *GameSession) RegisterClient(playerID string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[playerID] = client
}

// UnregisterClient removes a client connection. It reports false and
// leaves the registry alone when the player has since reconnected
// through another client.
func (s *GameSession) UnregisterClient(playerID string, client ClientConnection) bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if current, ok := s.clients[playerID]; !ok || current != client {
		return false
	}
	delete(s.clients, playerID)
	return true
}

// GetClient returns the client for a player
func (s *GameSession) GetClient(playerID string) (ClientConnection, bool) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	client, ok := s.clients[playerID]
	return client, ok
}

// Join gives a player a seat, or both seats when hotseat is set
// (two people sharing one screen). Joining again only renames.
func (s *GameSession) Join(playerID, nickname string, hotseat bool) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seats, ok := s.seats[playerID]
	if !ok {
		free := s.freeSeatsLocked()
		switch {
		case hotseat && len(free) == len(s.game.Players):
			seats = free
		case !hotseat && len(free) > 0:
			seats = free[:1]
		default:
			return nil, domain.ErrGameFull
		}

		// Take over seats left behind by disconnected players
		for other, held := range s.seats {
			if slices.ContainsFunc(held, func(seat int) bool { return slices.Contains(seats, seat) }) {
				delete(s.seats, other)
			}
		}
		s.seats[playerID] = seats
	}

	// A hot-seat client names only the first seat; the second keeps its default
	for _, seat := range seats[:1] {
		if err := s.game.SetPlayerName(seat, nickname); err != nil {
			return nil, err
		}
	}

	s.logger.Info("player joined", "playerID", playerID, "seats", seats)
	s.queueEventLocked(domain.EventPlayerJoined, &domain.SeatPayload{
		PlayerID: playerID,
		Seats:    seats,
		Name:     s.game.Players[seats[0]].Name,
	})

	return slices.Clone(seats), nil
}

// DisconnectPlayer notes that a player's connection dropped. The seats
// stay reserved until the player reconnects or someone else joins.
func (s *GameSession) DisconnectPlayer(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seats, ok := s.seats[playerID]; ok {
		s.queueEventLocked(domain.EventPlayerLeft, &domain.SeatPayload{PlayerID: playerID, Seats: seats})
	}
}

// freeSeatsLocked lists seats that nobody connected holds
func (s *GameSession) freeSeatsLocked() []int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	taken := make(map[int]bool)
	for playerID, seats := range s.seats {
		if _, connected := s.clients[playerID]; !connected {
			continue
		}
		for _, seat := range seats {
			taken[seat] = true
		}
	}

	free := make([]int, 0, len(s.game.Players))
	for seat := range s.game.Players {
		if !taken[seat] {
			free = append(free, seat)
		}
	}
	return free
}

// holdsSeatLocked checks whether a player holds a seat (any seat if seat is NoSeat)
func (s *GameSession) holdsSeatLocked(playerID string, seat int) bool {
	seats, ok := s.seats[playerID]
	if !ok {
		return false
	}
	return seat == domain.NoSeat || slices.Contains(seats, seat)
}

// StartGame starts the countdown for the first turn
func (s *GameSession) StartGame(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.holdsSeatLocked(playerID, domain.NoSeat) {
		return domain.ErrNotSeated
	}

	events, err := s.game.Start()
	if err != nil {
		return err
	}

	s.logger.Info("game started", "playerID", playerID)
	s.applyLocked(events)
	return nil
}

// SubmitWord checks a word for the active seat. Local rule violations
// come back as *domain.RejectionError; otherwise the word goes to the
// dictionary in the background and the verdict arrives as an event.
func (s *GameSession) SubmitWord(playerID, word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.holdsSeatLocked(playerID, domain.NoSeat) {
		return domain.ErrNotSeated
	}
	if s.game.Phase == domain.PhaseInProgress && !s.holdsSeatLocked(playerID, s.game.CurrentTurn) {
		return domain.ErrNotYourTurn
	}

	pending, events, err := s.game.BeginSubmission(word)
	s.applyLocked(events)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(s.ctx)
	s.lookupToken = pending.Token
	s.lookupCancel = cancel

	s.lookups.Add(1)
	go s.runLookup(ctx, *pending)

	return nil
}

// runLookup asks the dictionary and feeds the verdict back to the game
func (s *GameSession) runLookup(ctx context.Context, pending domain.PendingLookup) {
	defer s.lookups.Done()

	valid := s.lookup.Lookup(ctx, pending.Word)

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.game.ResolveLookup(pending.Token, valid)
	if err != nil {
		s.logger.Debug("discarding lookup result", "word", pending.Word, "token", pending.Token, "error", err)
		return
	}

	s.logger.Debug("word checked", "word", pending.Word, "valid", valid)
	s.applyLocked(events)
}

// RestartGame resets the game to its initial state. Seats are kept.
func (s *GameSession) RestartGame(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.holdsSeatLocked(playerID, domain.NoSeat) {
		return domain.ErrNotSeated
	}

	s.logger.Info("game restarted", "playerID", playerID)
	s.applyLocked(s.game.Restart())
	return nil
}

// Tick advances the turn timer by one step
func (s *GameSession) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(s.game.Tick())
}

// tick advances the timer unless the countdown that fired has been
// replaced or the tick fired before the current turn began
func (s *GameSession) tick(stop chan struct{}, fired time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countdownDone != stop || fired.Before(s.armedAt) {
		return
	}
	s.applyLocked(s.game.Tick())
}

// applyLocked broadcasts a transition's events and brings the timer and
// the in-flight lookup in line with the new state (caller must hold lock)
func (s *GameSession) applyLocked(events []domain.Event) {
	if len(events) == 0 {
		return
	}

	snapshot := s.game.Snapshot()
	swapped := false
	for _, e := range events {
		if e.Type == domain.EventTurnSwapped || e.Type == domain.EventGameStarted {
			swapped = true
		}
		if e.Type == domain.EventGameOver {
			s.logger.Info("game over", "payload", e.Payload)
		}
		s.queueEvent(s.newEvent(e.Type, "", e.Payload, snapshot))
	}

	// Drop a lookup the game no longer waits for
	if s.lookupCancel != nil && (s.game.Pending == nil || s.game.Pending.Token != s.lookupToken) {
		s.lookupCancel()
		s.lookupCancel = nil
		s.lookupToken = 0
	}

	if s.game.Phase == domain.PhaseInProgress {
		s.startCountdownLocked()
		if swapped {
			s.armedAt = time.Now()
			s.rearmCountdown()
		}
	} else {
		s.stopCountdownLocked()
	}
}

// startCountdownLocked launches the timer goroutine if it is not running
func (s *GameSession) startCountdownLocked() {
	if s.tickInterval <= 0 || s.countdownDone != nil {
		return
	}
	s.countdownDone = make(chan struct{})
	go s.countdown(s.countdownDone)
}

// stopCountdownLocked stops the timer goroutine
func (s *GameSession) stopCountdownLocked() {
	if s.countdownDone != nil {
		close(s.countdownDone)
		s.countdownDone = nil
	}
}

// rearmCountdown restarts the current second so a new turn gets a full one
func (s *GameSession) rearmCountdown() {
	select {
	case s.rearm <- struct{}{}:
	default:
	}
}

// countdown runs the turn timer
func (s *GameSession) countdown(stop chan struct{}) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-s.done:
			return
		case <-s.rearm:
			ticker.Reset(s.tickInterval)
		case fired := <-ticker.C:
			s.tick(stop, fired)
		}
	}
}

// newEvent stamps an event for broadcasting
func (s *GameSession) newEvent(eventType domain.EventType, playerID string, payload interface{}, snapshot *domain.Snapshot) *domain.GameEvent {
	return &domain.GameEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		GameID:    s.game.ID,
		PlayerID:  playerID,
		Payload:   payload,
		State:     snapshot,
		Timestamp: s.clock.Now(),
	}
}

// queueEventLocked queues an event with the current state (caller must hold lock)
func (s *GameSession) queueEventLocked(eventType domain.EventType, payload interface{}) {
	s.queueEvent(s.newEvent(eventType, "", payload, s.game.Snapshot()))
}

// queueEvent adds an event to the broadcast queue
func (s *GameSession) queueEvent(event *domain.GameEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop processes events and broadcasts to clients
func (s *GameSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to appropriate clients
func (s *GameSession) broadcastEvent(event *domain.GameEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	// If player-specific, send only to that player
	if event.PlayerID != "" {
		if client, ok := s.clients[event.PlayerID]; ok {
			if err := client.Send(event); err != nil {
				s.logger.Debug("failed to send to client", "playerID", event.PlayerID, "error", err)
			}
		}
		return
	}

	// Broadcast to all clients
	for playerID, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "playerID", playerID, "error", err)
		}
	}
}

// Close shuts down the session
func (s *GameSession) Close() {
	select {
	case <-s.done:
		return // Already closed
	default:
		close(s.done)
	}

	// Drop the pending word first so a verdict cut short by the cancel
	// below finds nothing to resolve
	s.mu.Lock()
	if abandoned := s.game.Abandon(); len(abandoned) > 0 {
		s.logger.Debug("pending lookup abandoned on close")
	}
	s.stopCountdownLocked()
	s.lookupCancel = nil
	s.lookupToken = 0
	s.mu.Unlock()

	s.cancel()
	s.lookups.Wait()

	// Close all client connections
	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
