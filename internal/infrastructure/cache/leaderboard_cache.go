package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/duoqueue/matchmaker/pkg/metrics"
)

// leaderboardKey is a single global sorted set: unlike a per-tournament
// program leaderboard, the matchmaker has exactly one rating pool.
const leaderboardKey = "leaderboard:teams"

// LeaderboardEntry is one row of the cached team leaderboard.
type LeaderboardEntry struct {
	Rank   int64   `json:"rank"`
	TeamID int64   `json:"team_id"`
	Elo    float64 `json:"elo"`
}

// LeaderboardCache mirrors team Elo into a Redis sorted set, so a
// read-heavy GET /leaderboard endpoint never has to run an ORDER BY elo
// query against Postgres under load. The persistence handler that writes
// a team's new Elo to Postgres keeps this in sync in the same breath.
type LeaderboardCache struct {
	cache   *Cache
	metrics *metrics.Metrics
}

// NewLeaderboardCache wraps cache as a team-Elo leaderboard backend.
func NewLeaderboardCache(cache *Cache, m *metrics.Metrics) *LeaderboardCache {
	return &LeaderboardCache{cache: cache, metrics: m}
}

// UpdateElo sets a team's cached score to elo, inserting it if absent.
func (lc *LeaderboardCache) UpdateElo(ctx context.Context, teamID int64, elo float64) error {
	return lc.cache.ZAdd(ctx, leaderboardKey, elo, strconv.FormatInt(teamID, 10))
}

// IncrementElo adjusts a team's cached score by delta without a
// read-modify-write round trip.
func (lc *LeaderboardCache) IncrementElo(ctx context.Context, teamID int64, delta float64) error {
	return lc.cache.ZIncrBy(ctx, leaderboardKey, delta, strconv.FormatInt(teamID, 10))
}

// GetTop returns the top n teams by cached Elo, highest first.
func (lc *LeaderboardCache) GetTop(ctx context.Context, n int64) ([]LeaderboardEntry, error) {
	results, err := lc.cache.ZRevRangeWithScores(ctx, leaderboardKey, 0, n-1)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, r := range results {
		teamID, err := strconv.ParseInt(r.Member.(string), 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Rank:   int64(i + 1),
			TeamID: teamID,
			Elo:    r.Score,
		})
	}
	return entries, nil
}

// Remove drops a team from the cached leaderboard, e.g. after a team
// disbands.
func (lc *LeaderboardCache) Remove(ctx context.Context, teamID int64) error {
	return lc.cache.ZRem(ctx, leaderboardKey, strconv.FormatInt(teamID, 10))
}

// Clear empties the cached leaderboard.
func (lc *LeaderboardCache) Clear(ctx context.Context) error {
	return lc.cache.Del(ctx, leaderboardKey)
}
