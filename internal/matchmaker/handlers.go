package matchmaker

import (
	"time"

	"github.com/duoqueue/matchmaker/pkg/logger"
)

// matchTriggerTag identifies the single registered MatchTriggerHandler;
// it is never deregistered except on handling error.
const matchTriggerTag int64 = 0

// MatchTriggerHandler drives queue -> round formation. It is registered
// once, at façade construction, for EventQueue, and stays requeueable for
// the matchmaker's whole lifetime.
type MatchTriggerHandler struct {
	config *Config
	games  *Games
	evmap  *EventMap
	nextID func() int64
	log    *logger.Logger
}

func newMatchTriggerHandler(config *Config, games *Games, evmap *EventMap, nextID func() int64, log *logger.Logger) *MatchTriggerHandler {
	return &MatchTriggerHandler{config: config, games: games, evmap: evmap, nextID: nextID, log: log}
}

func (h *MatchTriggerHandler) Kind() EventKind { return EventQueue }
func (h *MatchTriggerHandler) Tag() int64      { return matchTriggerTag }
func (h *MatchTriggerHandler) Requeue() bool   { return true }

func (h *MatchTriggerHandler) IsReady(ctx EventContext) bool {
	qctx, ok := ctx.Context.(*QueueContext)
	return ok && qctx.Len() == h.config.TriggerThreshold
}

// Handle forms a round from the queue: builds the round descriptor,
// runs the configured principal over the queued teams and history,
// clears the queue, registers the new in-game context, advances the
// queue's round_id, pairs a GameEndHandler to the formed round, and
// dispatches ROUND_START.
func (h *MatchTriggerHandler) Handle(ctx EventContext) error {
	qctx, ok := ctx.Context.(*QueueContext)
	if !ok {
		return ErrMissingContext
	}

	round := qctx.Round()
	round.StartTime = time.Now()
	round.Participants = qctx.Len()

	principal := GetPrincipal(round, *h.config, h.nextID, h.log)
	matches, err := principal.FormMatches(qctx.Teams(), qctx.History())
	if err != nil {
		return err
	}

	ictx := NewInGameContext(round, matches, h.config.KFactor)
	qctx.Clear()
	if err := h.games.PushGame(ictx); err != nil {
		return err
	}
	qctx.AdvanceRound()

	h.evmap.Register(newGameEndHandler(round.ID, h.games, h.evmap))

	return h.evmap.Handle(roundStartEvent(ictx, round))
}

// GameEndHandler fires once per round, when its in-game context
// completes. Not requeueable: it deregisters itself after firing.
type GameEndHandler struct {
	roundID int64
	games   *Games
	evmap   *EventMap
}

func newGameEndHandler(roundID int64, games *Games, evmap *EventMap) *GameEndHandler {
	return &GameEndHandler{roundID: roundID, games: games, evmap: evmap}
}

func (h *GameEndHandler) Kind() EventKind { return EventResult }
func (h *GameEndHandler) Tag() int64      { return h.roundID }
func (h *GameEndHandler) Requeue() bool   { return false }

func (h *GameEndHandler) IsReady(ctx EventContext) bool {
	ictx, ok := ctx.Context.(*InGameContext)
	return ok && ictx.Key() == h.roundID && ictx.IsComplete()
}

// Handle removes the completed context from the registry, stamps
// end_time, and dispatches ROUND_END.
func (h *GameEndHandler) Handle(ctx EventContext) error {
	ictx, ok := ctx.Context.(*InGameContext)
	if !ok {
		return ErrMissingContext
	}
	h.games.RemoveGame(h.roundID)
	round := ictx.EndRound(time.Now())
	return h.evmap.Handle(roundEndEvent(ictx, round))
}
