package notify

import (
	"encoding/json"
	"time"

	"github.com/duoqueue/matchmaker/pkg/logger"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one subscriber connection, pinned to a single round_key for
// its lifetime (a player reconnects with a fresh key after their round
// ends).
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	roundKey int64
	playerID int64
	log      *logger.Logger
}

// NewClient wraps an upgraded websocket connection.
func NewClient(hub *Hub, conn *websocket.Conn, roundKey, playerID int64, log *logger.Logger) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		roundKey: roundKey,
		playerID: playerID,
		log:      log,
	}
}

// Register adds the client to its hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump drains client messages (only ping/pong is meaningful here)
// until the connection closes.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.LogError("websocket read error", err, zap.Int64("player_id", c.playerID))
			}
			break
		}
		c.handleMessage(message)
	}
}

// WritePump delivers queued messages and periodic pings to the client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)
			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write([]byte{'\n'})
				_, _ = w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.log.Info("invalid message format", zap.Error(err), zap.Int64("player_id", c.playerID))
		return
	}
	switch msg.Type {
	case MessageTypePing:
		c.sendPong()
	default:
		c.log.Info("unknown message type", zap.String("type", string(msg.Type)), zap.Int64("player_id", c.playerID))
	}
}

func (c *Client) sendPong() {
	message := &Message{RoundKey: c.roundKey, Type: MessageTypePong, Payload: map[string]string{"status": "ok"}}
	data, err := json.Marshal(message)
	if err != nil {
		c.log.LogError("failed to marshal pong", err)
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Info("client send buffer full")
	}
}
