package matchmaker

// Games is the registry of ongoing in-game contexts, keyed by round key.
// Removal happens only at round completion (GameEndHandler).
type Games struct {
	contexts map[int64]*InGameContext
}

// NewGames builds an empty registry.
func NewGames() *Games {
	return &Games{contexts: make(map[int64]*InGameContext)}
}

// Len returns the number of ongoing contexts.
func (g *Games) Len() int { return len(g.contexts) }

// Contexts returns a snapshot of the ongoing contexts.
func (g *Games) Contexts() []*InGameContext {
	out := make([]*InGameContext, 0, len(g.contexts))
	for _, c := range g.contexts {
		out = append(out, c)
	}
	return out
}

// PushGame registers ctx under its key. Fails with GameAlreadyExist if the
// key is already taken.
func (g *Games) PushGame(ctx *InGameContext) error {
	if _, ok := g.contexts[ctx.Key()]; ok {
		return ErrGameAlreadyExist
	}
	g.contexts[ctx.Key()] = ctx
	return nil
}

// RemoveGame drops the context at key, if present.
func (g *Games) RemoveGame(key int64) {
	delete(g.contexts, key)
}

// Lookup resolves a context by round key directly, or by searching every
// ongoing context for a match/team/player it owns.
func (g *Games) Lookup(key LookupKey) (*InGameContext, bool) {
	if key.Kind == LookupKeyRoundID {
		c, ok := g.contexts[key.RoundID]
		return c, ok
	}
	for _, c := range g.contexts {
		if _, ok := c.Lookup(key); ok {
			return c, true
		}
	}
	return nil, false
}

// LookupMatch searches every ongoing context for the match a player,
// team, or match_id resolves to.
func (g *Games) LookupMatch(key LookupKey) (Match, bool) {
	for _, c := range g.contexts {
		if m, ok := c.Lookup(key); ok {
			return m, true
		}
	}
	return Match{}, false
}

// AddResult routes a reported match to the context that owns it (found by
// match_id lookup across ongoing contexts) and absorbs the result there.
// Returns the owning context's key, or MatchNotFound if no ongoing
// context owns this match.
func (g *Games) AddResult(reported Match) (int64, error) {
	ctx, ok := g.Lookup(ByMatch(reported.ID))
	if !ok {
		return 0, ErrMatchNotFound
	}
	if _, err := ctx.AddResult(reported); err != nil {
		return 0, err
	}
	return ctx.Key(), nil
}

// Reset drops every ongoing context.
func (g *Games) Reset() {
	g.contexts = make(map[int64]*InGameContext)
}
