package app

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"shiritori/internal/common/clock"
	"shiritori/internal/dictionary"
	"shiritori/internal/domain"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 6

	// StaleGameTimeout is how long before an abandoned game is cleaned up
	StaleGameTimeout = 2 * time.Hour

	cleanupInterval = 10 * time.Minute
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// HubConfig holds what every new session is built with
type HubConfig struct {
	Rules        domain.Rules
	Lookup       dictionary.Lookup
	Clock        clock.Clock
	Logger       *slog.Logger
	TickInterval time.Duration
	StaleTimeout time.Duration
}

// GameHub manages all active game sessions
type GameHub struct {
	sessions       map[string]*GameSession
	mu             sync.RWMutex
	roomCodeLength int
	rules          domain.Rules
	sessionConfig  *SessionConfig
	staleTimeout   time.Duration
	clock          clock.Clock
	logger         *slog.Logger
	done           chan struct{}
	closeOnce      sync.Once
}

// NewGameHub creates a new game hub
func NewGameHub(cfg *HubConfig) (*GameHub, error) {
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
	staleTimeout := cfg.StaleTimeout
	if staleTimeout <= 0 {
		staleTimeout = StaleGameTimeout
	}

	hub := &GameHub{
		sessions:       make(map[string]*GameSession),
		roomCodeLength: DefaultRoomCodeLength,
		rules:          cfg.Rules,
		sessionConfig: &SessionConfig{
			Lookup:       cfg.Lookup,
			Clock:        clk,
			Logger:       logger,
			TickInterval: cfg.TickInterval,
		},
		staleTimeout: staleTimeout,
		clock:        clk,
		logger:       logger,
		done:         make(chan struct{}),
	}

	// Start cleanup goroutine
	go hub.cleanupLoop()

	return hub, nil
}

// CreateGame creates a new game and returns its session
func (h *GameHub) CreateGame() (*GameSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Generate unique room code
	var roomCode string
	for attempts := 0; attempts < 10; attempts++ {
		roomCode = h.generateRoomCode()
		if _, exists := h.sessions[roomCode]; !exists {
			break
		}
	}

	if _, exists := h.sessions[roomCode]; exists {
		return nil, fmt.Errorf("failed to generate unique room code")
	}

	game := domain.NewGame(roomCode, h.rules, h.clock.Now())
	session, err := NewGameSession(game, h.sessionConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	h.sessions[roomCode] = session

	h.logger.Info("game created", "roomCode", roomCode)

	return session, nil
}

// GetSession returns a game session by room code, ignoring case
func (h *GameHub) GetSession(roomCode string) (*GameSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[strings.ToUpper(roomCode)]
	if !ok {
		return nil, domain.ErrGameNotFound
	}

	return session, nil
}

// DeleteSession removes a game session
func (h *GameHub) DeleteSession(roomCode string) {
	roomCode = strings.ToUpper(roomCode)

	h.mu.Lock()
	session, ok := h.sessions[roomCode]
	delete(h.sessions, roomCode)
	h.mu.Unlock()

	// Closing waits for in-flight lookups, so it runs outside the hub lock
	if ok {
		session.Close()
		h.logger.Info("game deleted", "roomCode", roomCode)
	}
}

// GetSessionCount returns the number of active sessions
func (h *GameHub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GetTotalPlayerCount returns the number of connected clients across all sessions
func (h *GameHub) GetTotalPlayerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		total += session.GetClientCount()
	}
	return total
}

// Close shuts down the hub and all sessions
func (h *GameHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[string]*GameSession)
	h.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

// generateRoomCode generates a random room code
func (h *GameHub) generateRoomCode() string {
	b := make([]byte, h.roomCodeLength)
	rand.Read(b)

	code := make([]byte, h.roomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code)
}

// cleanupLoop periodically cleans up stale games
func (h *GameHub) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupStaleGames()
		}
	}
}

// cleanupStaleGames removes games nobody is connected to once they are old enough
func (h *GameHub) cleanupStaleGames() int {
	now := h.clock.Now()
	stale := make(map[string]*GameSession)

	h.mu.Lock()
	for roomCode, session := range h.sessions {
		if session.GetClientCount() == 0 && now.Sub(session.GetCreatedAt()) > h.staleTimeout {
			stale[roomCode] = session
			delete(h.sessions, roomCode)
		}
	}
	h.mu.Unlock()

	for roomCode, session := range stale {
		session.Close()
		h.logger.Info("stale game cleaned up", "roomCode", roomCode)
	}

	return len(stale)
}
