package executor

import (
	"context"

	"github.com/duoqueue/matchmaker/internal/infrastructure/cache"
	"github.com/duoqueue/matchmaker/internal/matchmaker"
	"github.com/duoqueue/matchmaker/internal/repository"
)

// RegisterPersistenceHandlers wires the repository port into mm as a set
// of async handlers: round formation and results are write-through to
// Postgres without the façade ever waiting on a query. leaderboard may be
// nil, in which case the cached leaderboard is simply left stale.
func RegisterPersistenceHandlers(mm MatchMakerRegistrar, repo repository.Repositories, leaderboard *cache.LeaderboardCache, pool *Pool) {
	mm.RegisterHandler(NewAsyncHandler(matchmaker.EventRoundStart, persistRoundStartTag, "persist_round_start", pool,
		func(ctx context.Context, ectx matchmaker.EventContext) error {
			if ectx.Round == nil {
				return nil
			}
			if err := repo.Rounds.Insert(ctx, *ectx.Round); err != nil {
				return err
			}
			ictx, _ := ectx.Context.(*matchmaker.InGameContext)
			if ictx == nil {
				return nil
			}
			for _, m := range ictx.Matches() {
				if err := repo.Matches.Insert(ctx, m); err != nil {
					return err
				}
			}
			return nil
		}))

	mm.RegisterHandler(NewAsyncHandler(matchmaker.EventResult, persistResultTag, "persist_result", pool,
		func(ctx context.Context, ectx matchmaker.EventContext) error {
			if ectx.Match == nil {
				return nil
			}
			if err := repo.Results.Insert(ctx, ectx.Match.TeamOne, ectx.Match.ID); err != nil {
				return err
			}
			if err := repo.Results.Insert(ctx, ectx.Match.TeamTwo, ectx.Match.ID); err != nil {
				return err
			}
			newEloOne := ectx.Match.TeamOne.Team.Elo + ectx.Match.TeamOne.Delta
			newEloTwo := ectx.Match.TeamTwo.Team.Elo + ectx.Match.TeamTwo.Delta
			if err := repo.Teams.UpdateElo(ctx, ectx.Match.TeamOne.Team.ID, newEloOne); err != nil {
				return err
			}
			if err := repo.Teams.UpdateElo(ctx, ectx.Match.TeamTwo.Team.ID, newEloTwo); err != nil {
				return err
			}
			if leaderboard != nil {
				_ = leaderboard.UpdateElo(ctx, ectx.Match.TeamOne.Team.ID, newEloOne)
				_ = leaderboard.UpdateElo(ctx, ectx.Match.TeamTwo.Team.ID, newEloTwo)
			}
			return nil
		}))

	mm.RegisterHandler(NewAsyncHandler(matchmaker.EventRoundEnd, persistRoundEndTag, "persist_round_end", pool,
		func(ctx context.Context, ectx matchmaker.EventContext) error {
			if ectx.Round == nil || ectx.Round.EndTime == nil {
				return nil
			}
			return repo.Rounds.Stamp(ctx, ectx.Round.ID, *ectx.Round.EndTime)
		}))
}

// tags for the built-in persistence handlers; negative so they never
// collide with a round_id-derived tag (GameEndHandler uses positive
// round_id values).
const (
	persistRoundStartTag int64 = -1
	persistResultTag     int64 = -2
	persistRoundEndTag   int64 = -3
)

// MatchMakerRegistrar is the minimal façade surface this package needs:
// only RegisterHandler, so executor doesn't otherwise couple to
// MatchMaker's full API.
type MatchMakerRegistrar interface {
	RegisterHandler(h matchmaker.EventHandler)
}
