package notify

import (
	"github.com/duoqueue/matchmaker/internal/matchmaker"
)

// bridgeHandler adapts a Broadcaster into a matchmaker.EventHandler for
// one EventKind. Handle never returns an error: a broken WebSocket
// channel must never fail a QueueTeam/InsertResult call.
type bridgeHandler struct {
	kind    matchmaker.EventKind
	tag     int64
	publish func(b Broadcaster, ectx matchmaker.EventContext)
	b       Broadcaster
}

func (h *bridgeHandler) Kind() matchmaker.EventKind                  { return h.kind }
func (h *bridgeHandler) Tag() int64                                  { return h.tag }
func (h *bridgeHandler) Requeue() bool                               { return true }
func (h *bridgeHandler) IsReady(matchmaker.EventContext) bool        { return true }
func (h *bridgeHandler) Handle(ectx matchmaker.EventContext) error {
	h.publish(h.b, ectx)
	return nil
}

// roundKeyOf resolves the round_key a notification belongs under, from
// whichever context field is populated.
func roundKeyOf(ectx matchmaker.EventContext) int64 {
	if ectx.Round != nil {
		return ectx.Round.Key()
	}
	switch c := ectx.Context.(type) {
	case *matchmaker.QueueContext:
		return c.Round().Key()
	case *matchmaker.InGameContext:
		return c.Key()
	}
	return 0
}

// Registrar is the minimal façade surface this package needs.
type Registrar interface {
	RegisterHandler(h matchmaker.EventHandler)
}

const (
	bridgeQueueTag      int64 = -101
	bridgeDequeueTag    int64 = -102
	bridgeResultTag     int64 = -103
	bridgeRoundStartTag int64 = -104
	bridgeRoundEndTag   int64 = -105
)

// RegisterBridge wires a Broadcaster to every event kind the live
// WebSocket surface cares about.
func RegisterBridge(mm Registrar, b Broadcaster) {
	mm.RegisterHandler(&bridgeHandler{
		kind: matchmaker.EventQueue, tag: bridgeQueueTag, b: b,
		publish: func(b Broadcaster, ectx matchmaker.EventContext) {
			if ectx.Team == nil {
				return
			}
			b.Broadcast(roundKeyOf(ectx), string(MessageTypeQueueUpdate), map[string]any{
				"team_id": ectx.Team.ID, "team_name": ectx.Team.Name,
			})
		},
	})
	mm.RegisterHandler(&bridgeHandler{
		kind: matchmaker.EventDequeue, tag: bridgeDequeueTag, b: b,
		publish: func(b Broadcaster, ectx matchmaker.EventContext) {
			if ectx.Team == nil {
				return
			}
			b.Broadcast(roundKeyOf(ectx), string(MessageTypeQueueUpdate), map[string]any{
				"team_id": ectx.Team.ID, "left": true,
			})
		},
	})
	mm.RegisterHandler(&bridgeHandler{
		kind: matchmaker.EventRoundStart, tag: bridgeRoundStartTag, b: b,
		publish: func(b Broadcaster, ectx matchmaker.EventContext) {
			ictx, ok := ectx.Context.(*matchmaker.InGameContext)
			if !ok {
				return
			}
			b.Broadcast(roundKeyOf(ectx), string(MessageTypeMatchFormed), map[string]any{
				"round_key": ictx.Key(), "matches": ictx.Matches(),
			})
		},
	})
	mm.RegisterHandler(&bridgeHandler{
		kind: matchmaker.EventResult, tag: bridgeResultTag, b: b,
		publish: func(b Broadcaster, ectx matchmaker.EventContext) {
			if ectx.Match == nil {
				return
			}
			b.Broadcast(roundKeyOf(ectx), string(MessageTypeResultPosted), ectx.Match)
		},
	})
	mm.RegisterHandler(&bridgeHandler{
		kind: matchmaker.EventRoundEnd, tag: bridgeRoundEndTag, b: b,
		publish: func(b Broadcaster, ectx matchmaker.EventContext) {
			if ectx.Round == nil {
				return
			}
			b.Broadcast(ectx.Round.Key(), string(MessageTypeRoundEnded), ectx.Round)
		},
	})
}
