// Package notify broadcasts matchmaker state transitions to WebSocket
// subscribers, grouped by round key, using a hub/client/broadcaster
// split keyed by the matchmaker's round_id rather than a tournament
// UUID.
package notify

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/duoqueue/matchmaker/pkg/logger"
	"go.uber.org/zap"
)

// Hub fans out Messages to every client subscribed to a round_id.
type Hub struct {
	rounds map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message

	mu  sync.RWMutex
	log *logger.Logger
}

// Message is one broadcast event.
type Message struct {
	RoundKey int64       `json:"round_key"`
	Type     MessageType `json:"type"`
	Payload  interface{} `json:"payload"`
}

// MessageType names the kind of update carried by a Message.
type MessageType string

const (
	MessageTypeQueueUpdate  MessageType = "queue_update"
	MessageTypeMatchFormed  MessageType = "match_formed"
	MessageTypeResultPosted MessageType = "result_posted"
	MessageTypeRoundEnded   MessageType = "round_ended"
	MessageTypeError        MessageType = "error"
	MessageTypePing         MessageType = "ping"
	MessageTypePong         MessageType = "pong"
)

// NewHub builds an idle hub; call Run to start its event loop.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		rounds:     make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		log:        log,
	}
}

// Run drives the hub's event loop until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.log.Info("notification hub shutting down")
			h.shutdown()
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rounds[client.roundKey] == nil {
		h.rounds[client.roundKey] = make(map[*Client]bool)
	}
	h.rounds[client.roundKey][client] = true
	h.log.Info("client registered", zap.Int64("round_key", client.roundKey))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rounds[client.roundKey]
	if !ok {
		return
	}
	if _, exists := clients[client]; exists {
		delete(clients, client)
		close(client.send)
		if len(clients) == 0 {
			delete(h.rounds, client.roundKey)
		}
		h.log.Info("client unregistered", zap.Int64("round_key", client.roundKey))
	}
}

func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rounds[message.RoundKey]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.log.LogError("failed to marshal notification", err)
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.log.Info("client send buffer full, disconnecting", zap.Int64("round_key", client.roundKey))
			close(client.send)
			delete(clients, client)
		}
	}
}

// Broadcast queues a message for delivery; drops it (with a log line) if
// the hub's internal channel is saturated rather than blocking the
// caller.
func (h *Hub) Broadcast(roundKey int64, messageType string, payload interface{}) {
	message := &Message{RoundKey: roundKey, Type: MessageType(messageType), Payload: payload}
	select {
	case h.broadcast <- message:
	default:
		h.log.Error("broadcast channel full, message dropped", zap.Int64("round_key", roundKey))
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roundKey, clients := range h.rounds {
		for client := range clients {
			close(client.send)
			delete(clients, client)
		}
		delete(h.rounds, roundKey)
	}
}

// Stats reports the hub's current subscriber counts.
func (h *Hub) Stats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, clients := range h.rounds {
		total += len(clients)
	}
	return map[string]int{"rounds": len(h.rounds), "total_clients": total}
}
