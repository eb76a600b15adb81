package matchmaker

import (
	"sync"
	"sync/atomic"

	"github.com/duoqueue/matchmaker/pkg/logger"
)

// MatchMaker is the public façade: the single serial entry point through
// which external callers must funnel queue/dequeue/result operations.
// It owns the queue context, games registry, and event map, and
// registers a MatchTriggerHandler at construction.
type MatchMaker struct {
	mu sync.Mutex

	config Config
	qctx   *QueueContext
	games  *Games
	evmap  *EventMap
	log    *logger.Logger

	nextID atomic.Int64

	// reportedMatches remembers which match_ids have already received a
	// result, independent of max_history: a round's in-game context is
	// removed from the registry as soon as it completes, so duplicate
	// detection cannot rely on the (possibly disabled) anti-repeat ring.
	reportedMatches map[int64]bool
}

// New builds a matchmaker seeded at baseRound (must have a non-zero
// round_id) and registers the built-in MatchTriggerHandler.
func New(config Config, baseRound Round, log *logger.Logger) (*MatchMaker, error) {
	if baseRound.ID == 0 {
		return nil, ErrMissingFields.WithMessage("base round must have a non-zero round_id")
	}
	mm := &MatchMaker{
		config:          config,
		qctx:            NewQueueContext(baseRound, config.MaxHistory),
		games:           NewGames(),
		evmap:           NewEventMap(),
		log:             log,
		reportedMatches: make(map[int64]bool),
	}
	mm.registerTrigger()
	return mm, nil
}

func (mm *MatchMaker) registerTrigger() {
	mm.evmap.Register(newMatchTriggerHandler(&mm.config, mm.games, mm.evmap, mm.generateID, mm.log))
}

func (mm *MatchMaker) generateID() int64 {
	return mm.nextID.Add(1)
}

// SetThreshold mutates the queue-size that triggers round formation.
func (mm *MatchMaker) SetThreshold(n int) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.config.TriggerThreshold = n
}

// SetPrincipal mutates the configured selection policy. Unknown names are
// accepted here and resolved to max_sum (with a warning) at formation
// time by GetPrincipal.
func (mm *MatchMaker) SetPrincipal(name PrincipalName) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.config.Principal = name
}

// HasQueuedPlayer reports whether discordID currently holds a spot in the
// queue.
func (mm *MatchMaker) HasQueuedPlayer(discordID int64) bool {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	_, ok := mm.qctx.Lookup(ByPlayer(discordID))
	return ok
}

// HasQueuedTeam reports whether teamID is currently queued.
func (mm *MatchMaker) HasQueuedTeam(teamID int64) bool {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	_, ok := mm.qctx.Lookup(ByTeam(teamID))
	return ok
}

// IsPlayerAvailable reports whether discordID is free to queue: neither
// already queued nor part of an ongoing match.
func (mm *MatchMaker) IsPlayerAvailable(discordID int64) bool {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if _, ok := mm.qctx.Lookup(ByPlayer(discordID)); ok {
		return false
	}
	_, ok := mm.games.LookupMatch(ByPlayer(discordID))
	return !ok
}

// IsTeamAvailable reports whether teamID is free to queue.
func (mm *MatchMaker) IsTeamAvailable(teamID int64) bool {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if _, ok := mm.qctx.Lookup(ByTeam(teamID)); ok {
		return false
	}
	_, ok := mm.games.LookupMatch(ByTeam(teamID))
	return !ok
}

// GetQueue returns a snapshot of the queued teams, in queue order.
func (mm *MatchMaker) GetQueue() []Team {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.qctx.Teams()
}

// GetGames returns a snapshot of the ongoing in-game contexts.
func (mm *MatchMaker) GetGames() []*InGameContext {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.games.Contexts()
}

// GetTeamOfPlayer resolves the team a player currently belongs to,
// whether queued or already matched.
func (mm *MatchMaker) GetTeamOfPlayer(discordID int64) (Team, bool) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if t, ok := mm.qctx.Lookup(ByPlayer(discordID)); ok {
		return t, true
	}
	if m, ok := mm.games.LookupMatch(ByPlayer(discordID)); ok {
		return m.TeamOfPlayer(discordID)
	}
	return Team{}, false
}

// GetMatchOfPlayer resolves the ongoing match a player currently belongs
// to, if any.
func (mm *MatchMaker) GetMatchOfPlayer(discordID int64) (Match, bool) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.games.LookupMatch(ByPlayer(discordID))
}

// GetMatch resolves an ongoing match by match_id, for the API surface
// that accepts a result report scoped to one match.
func (mm *MatchMaker) GetMatch(matchID int64) (Match, bool) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.games.LookupMatch(ByMatch(matchID))
}

// QueueTeam enqueues team, then dispatches QUEUE. The round-formation
// trigger (if any) runs synchronously as part of this call.
func (mm *MatchMaker) QueueTeam(team Team) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if err := mm.qctx.Queue(team); err != nil {
		return err
	}
	return mm.evmap.Handle(queueEvent(mm.qctx, team))
}

// DequeueTeam removes team from the queue, then dispatches DEQUEUE.
func (mm *MatchMaker) DequeueTeam(team Team) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if err := mm.qctx.Dequeue(team); err != nil {
		return err
	}
	return mm.evmap.Handle(dequeueEvent(mm.qctx, team))
}

// InsertResult routes a reported match through the games registry; on
// success the match is pushed to queue history and RESULT is dispatched.
func (mm *MatchMaker) InsertResult(match Match) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if err := match.Validate(); err != nil {
		return err
	}
	if mm.reportedMatches[match.ID] {
		return ErrDuplicateResult
	}
	key, err := mm.games.AddResult(match)
	if err != nil {
		return err
	}
	ictx, ok := mm.games.Lookup(ByRoundID(key))
	if !ok {
		return ErrMissingContext
	}
	stored, _ := ictx.Lookup(ByMatch(match.ID))
	mm.reportedMatches[match.ID] = true
	mm.qctx.PushHistory(stored)
	return mm.evmap.Handle(resultEvent(ictx, stored))
}

// Reset clears the queue, the games registry, and every registered
// handler, then re-registers the built-in trigger.
func (mm *MatchMaker) Reset() {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.qctx.Clear()
	mm.qctx.ClearHistory()
	mm.games.Reset()
	mm.evmap.Reset()
	mm.reportedMatches = make(map[int64]bool)
	mm.registerTrigger()
}

// ClearQueue empties the queue without touching history or games.
func (mm *MatchMaker) ClearQueue() {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.qctx.Clear()
}

// ClearHistory empties the anti-repeat ring without touching the queue.
func (mm *MatchMaker) ClearHistory() {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.qctx.ClearHistory()
}

// RegisterHandler adds an external handler (the plug-in point for the
// chat front-end or persistence collaborators).
func (mm *MatchMaker) RegisterHandler(h EventHandler) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.evmap.Register(h)
}
