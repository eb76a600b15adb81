package notify

import (
	"context"
	"testing"
	"time"

	"github.com/duoqueue/matchmaker/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logger.Logger {
	log, _ := logger.New("error", "json")
	return log
}

func newTestClient(hub *Hub, roundKey int64) *Client {
	return &Client{
		hub:      hub,
		send:     make(chan []byte, 8),
		roundKey: roundKey,
		log:      testLogger(),
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient(hub, 7)
	client.Register()

	assert.Eventually(t, func() bool {
		return hub.Stats()["total_clients"] == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast(7, string(MessageTypeMatchFormed), map[string]int{"match_id": 1})

	select {
	case data := <-client.send:
		assert.Contains(t, string(data), "match_formed")
	case <-time.After(time.Second):
		t.Fatal("client never received broadcast message")
	}
}

func TestHub_BroadcastIgnoresOtherRounds(t *testing.T) {
	hub := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient(hub, 1)
	client.Register()
	assert.Eventually(t, func() bool {
		return hub.Stats()["total_clients"] == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast(2, string(MessageTypeRoundEnded), nil)

	select {
	case <-client.send:
		t.Fatal("client subscribed to round 1 should not receive round 2 broadcasts")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient(hub, 3)
	client.Register()
	assert.Eventually(t, func() bool {
		return hub.Stats()["total_clients"] == 1
	}, time.Second, 10*time.Millisecond)

	hub.unregister <- client
	assert.Eventually(t, func() bool {
		return hub.Stats()["total_clients"] == 0
	}, time.Second, 10*time.Millisecond)
}
