package matchmaker

import "time"

// GameState is the in-game context's state machine: INGAME → ENDED is
// monotonic.
type GameState int

const (
	StateInGame GameState = iota
	StateEnded
)

// InGameContext tracks one formed round until every match has reported a
// result. Its key is stable for the context's whole lifetime.
type InGameContext struct {
	round    Round
	matches  []Match
	reported map[int64]bool
	state    GameState
	kFactor  int
}

// NewInGameContext builds a context for round holding matches, using
// kFactor to turn reported-vs-expected points into a rating delta.
func NewInGameContext(round Round, matches []Match, kFactor int) *InGameContext {
	return &InGameContext{
		round:    round,
		matches:  matches,
		reported: make(map[int64]bool),
		state:    StateInGame,
		kFactor:  kFactor,
	}
}

// Key is hash(round_id) in the source; round_id alone is already a stable,
// collision-free key for this process so it is used directly.
func (c *InGameContext) Key() int64 { return c.round.Key() }

// Round returns the round this context was formed for.
func (c *InGameContext) Round() Round { return c.round }

// Matches returns a snapshot of the context's matches.
func (c *InGameContext) Matches() []Match {
	out := make([]Match, len(c.matches))
	copy(out, c.matches)
	return out
}

// IsComplete is true iff the state machine reached ENDED.
func (c *InGameContext) IsComplete() bool { return c.state == StateEnded }

func matchPlayers(m Match) [4]int64 {
	return [4]int64{
		m.TeamOne.Team.PlayerOne.DiscordID, m.TeamOne.Team.PlayerTwo.DiscordID,
		m.TeamTwo.Team.PlayerOne.DiscordID, m.TeamTwo.Team.PlayerTwo.DiscordID,
	}
}

// AddResult absorbs a reported match (team_one.points/team_two.points
// holding the reported scores) into the stored match with the same
// match_id. Rejects: the match isn't tracked here (MatchNotFound), any of
// its four players already reported (DuplicateResult), or the context has
// already ended (GameEnded). On success it computes each side's delta
// from the expected points the principal attached at formation time,
// overwrites the stored results, and transitions to ENDED once every
// match has reported.
func (c *InGameContext) AddResult(reported Match) (Match, error) {
	idx := -1
	for i, m := range c.matches {
		if m.ID == reported.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Match{}, ErrMatchNotFound
	}
	stored := c.matches[idx]
	players := matchPlayers(stored)
	for _, p := range players {
		if c.reported[p] {
			return Match{}, ErrDuplicateResult
		}
	}
	if c.state == StateEnded {
		return Match{}, ErrGameEnded
	}

	one := stored.TeamOne
	one.Delta = float64(c.kFactor) * (reported.TeamOne.Points - stored.TeamOne.Points)
	one.Points = reported.TeamOne.Points

	two := stored.TeamTwo
	two.Delta = float64(c.kFactor) * (reported.TeamTwo.Points - stored.TeamTwo.Points)
	two.Points = reported.TeamTwo.Points

	stored.TeamOne = one
	stored.TeamTwo = two
	c.matches[idx] = stored

	for _, p := range players {
		c.reported[p] = true
	}
	if len(c.reported) == 4*len(c.matches) {
		c.state = StateEnded
	}
	return stored, nil
}

// EndRound stamps end_time and returns the updated round descriptor.
// Called by GameEndHandler once the context has completed.
func (c *InGameContext) EndRound(end time.Time) Round {
	c.round.EndTime = &end
	return c.round
}

// Lookup resolves the match containing the given player, team, or
// match_id. All three key kinds resolve to the Match they identify.
func (c *InGameContext) Lookup(key LookupKey) (Match, bool) {
	switch key.Kind {
	case LookupKeyPlayer:
		for _, m := range c.matches {
			for _, t := range m.teams() {
				if t.HasPlayer(key.Player) {
					return m, true
				}
			}
		}
	case LookupKeyTeam:
		for _, m := range c.matches {
			for _, t := range m.teams() {
				if t.ID == key.Team {
					return m, true
				}
			}
		}
	case LookupKeyMatch:
		for _, m := range c.matches {
			if m.ID == key.MatchID {
				return m, true
			}
		}
	}
	return Match{}, false
}
