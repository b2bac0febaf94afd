package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"shiritori/internal/app"
	"shiritori/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection
type Client struct {
	conn     *websocket.Conn
	session  *app.GameSession
	playerID string
	send     chan []byte
	done     chan struct{}
	logger   *slog.Logger
	mu       sync.Mutex
	closed   bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, session *app.GameSession, playerID string, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		session:  session,
		playerID: playerID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger.With("roomCode", session.GetRoomCode(), "playerID", playerID),
	}
}

// GetPlayerID returns the player ID for this client
func (c *Client) GetPlayerID() string {
	return c.playerID
}

// Send implements app.ClientConnection. Session events are wrapped in a
// game_event message; anything else is sent as is.
func (c *Client) Send(message interface{}) error {
	if event, ok := message.(*domain.GameEvent); ok {
		message = NewServerMessage(MsgGameEvent, &GameEventPayload{Event: event})
	}

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("send buffer full, message dropped")
		return nil
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		// A reconnect under the same ID has already replaced this client
		if c.session.UnregisterClient(c.playerID, c) {
			c.session.DisconnectPlayer(c.playerID)
		}
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			// One JSON document per frame so clients can parse each frame whole
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(&ErrorPayload{Code: ErrCodeInvalidMessage, Message: "Invalid message format"})
		return
	}

	switch msg.Type {
	case MsgJoinGame:
		c.handleJoinGame(msg.Payload)
	case MsgStartGame:
		c.reply(c.session.StartGame(c.playerID))
	case MsgSubmitWord:
		c.handleSubmitWord(msg.Payload)
	case MsgRestartGame:
		c.reply(c.session.RestartGame(c.playerID))
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(&ErrorPayload{Code: ErrCodeInvalidMessage, Message: "Unknown message type"})
	}
}

// handleJoinGame handles a join_game message
func (c *Client) handleJoinGame(payload interface{}) {
	payloadMap, ok := payload.(map[string]interface{})
	if !ok {
		c.sendError(&ErrorPayload{Code: ErrCodeInvalidMessage, Message: "Invalid payload"})
		return
	}

	// Blank nicknames fall back to the seat's default name
	nickname, _ := payloadMap["nickname"].(string)
	hotseat, _ := payloadMap["hotseat"].(bool)

	if _, err := c.session.Join(c.playerID, nickname, hotseat); err != nil {
		c.reply(err)
		return
	}

	c.sendConnected()
}

// handleSubmitWord handles a submit_word message
func (c *Client) handleSubmitWord(payload interface{}) {
	payloadMap, ok := payload.(map[string]interface{})
	if !ok {
		c.sendError(&ErrorPayload{Code: ErrCodeInvalidMessage, Message: "Invalid payload"})
		return
	}

	word, ok := payloadMap["word"].(string)
	if !ok {
		c.sendError(&ErrorPayload{Code: ErrCodeInvalidMessage, Message: "Word is required"})
		return
	}

	c.reply(c.session.SubmitWord(c.playerID, word))
}

// reply reports a failed action back to the client
func (c *Client) reply(err error) {
	if err == nil {
		return
	}
	c.logger.Debug("action refused", "error", err)
	c.sendError(errorFor(err))
}

// sendConnected sends the connected message to the client
func (c *Client) sendConnected() {
	c.Send(NewServerMessage(MsgConnected, connectedPayload(c.session, c.playerID)))
}

// sendError sends an error message to the client
func (c *Client) sendError(payload *ErrorPayload) {
	c.Send(NewServerMessage(MsgError, payload))
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	c.Send(NewServerMessage(MsgPong, nil))
}
