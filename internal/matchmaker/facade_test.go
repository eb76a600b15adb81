package matchmaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMatchMaker(t *testing.T, config Config) *MatchMaker {
	t.Helper()
	mm, err := New(config, Round{ID: 1}, nil)
	require.NoError(t, err)
	return mm
}

// Scenario A — queue/dequeue.
func TestScenarioA_QueueDequeue(t *testing.T) {
	config := DefaultConfig()
	config.TriggerThreshold = 10
	mm := newTestMatchMaker(t, config)

	p1, p2, p3 := player(1, "a"), player(2, "b"), player(3, "c")
	t1 := team(1, "T1", p1, p2, 1000)
	t2 := team(2, "T2", p1, p3, 1000)

	require.NoError(t, mm.QueueTeam(t1))
	assert.Len(t, mm.GetQueue(), 1)

	err := mm.QueueTeam(t2)
	var aq *AlreadyQueuedError
	require.ErrorAs(t, err, &aq)
	assert.Equal(t, p1.DiscordID, aq.Player)
	assert.Equal(t, t1.ID, aq.TeamID)

	require.NoError(t, mm.DequeueTeam(t1))
	assert.Empty(t, mm.GetQueue())
}

// Scenario B — trigger.
func TestScenarioB_Trigger(t *testing.T) {
	config := DefaultConfig()
	config.TriggerThreshold = 2
	config.MaxHistory = 0
	config.Principal = PrincipalMaxSum
	mm := newTestMatchMaker(t, config)

	t1 := team(1, "T1", player(11, "a"), player(12, "b"), 1000)
	t2 := team(2, "T2", player(21, "c"), player(22, "d"), 1000)

	require.NoError(t, mm.QueueTeam(t1))
	require.NoError(t, mm.QueueTeam(t2))

	assert.Empty(t, mm.GetQueue())
	games := mm.GetGames()
	require.Len(t, games, 1)
	matches := games[0].Matches()
	require.Len(t, matches, 1)
	assert.ElementsMatch(t, []int64{t1.ID, t2.ID}, []int64{matches[0].TeamOne.Team.ID, matches[0].TeamTwo.Team.ID})
	assert.Equal(t, int64(2), mm.qctx.Round().ID)
}

// Scenario C — result/delta.
func TestScenarioC_ResultDelta(t *testing.T) {
	config := DefaultConfig()
	config.TriggerThreshold = 2
	config.PointsPerMatch = 1
	config.KFactor = 32
	config.MaxHistory = 5
	mm := newTestMatchMaker(t, config)

	t1 := team(1, "T1", player(11, "a"), player(12, "b"), 1000)
	t2 := team(2, "T2", player(21, "c"), player(22, "d"), 1000)
	require.NoError(t, mm.QueueTeam(t1))
	require.NoError(t, mm.QueueTeam(t2))

	match := mm.GetGames()[0].Matches()[0]
	reported := match
	reported.TeamOne.Points = 7
	reported.TeamTwo.Points = 3

	require.NoError(t, mm.InsertResult(reported))
	assert.Empty(t, mm.GetGames())

	hist := mm.qctx.History()
	require.Len(t, hist, 1)
	assert.InDelta(t, 208, hist[0].TeamOne.Delta, 0.0001)
	assert.InDelta(t, 80, hist[0].TeamTwo.Delta, 0.0001)
}

// Scenario D — duplicate result.
func TestScenarioD_DuplicateResult(t *testing.T) {
	config := DefaultConfig()
	config.TriggerThreshold = 2
	mm := newTestMatchMaker(t, config)

	t1 := team(1, "T1", player(11, "a"), player(12, "b"), 1000)
	t2 := team(2, "T2", player(21, "c"), player(22, "d"), 1000)
	require.NoError(t, mm.QueueTeam(t1))
	require.NoError(t, mm.QueueTeam(t2))

	match := mm.GetGames()[0].Matches()[0]
	reported := match
	reported.TeamOne.Points = 7
	reported.TeamTwo.Points = 3

	require.NoError(t, mm.InsertResult(reported))
	err := mm.InsertResult(reported)
	assert.ErrorIs(t, err, ErrDuplicateResult)
}

// Scenario E — anti-repeat.
func TestScenarioE_AntiRepeat(t *testing.T) {
	config := DefaultConfig()
	config.TriggerThreshold = 4
	config.MaxHistory = 1
	config.Principal = PrincipalMaxSum
	mm := newTestMatchMaker(t, config)

	t1 := team(1, "T1", player(11, "a"), player(12, "b"), 1000)
	t2 := team(2, "T2", player(21, "c"), player(22, "d"), 1000)
	t3 := team(3, "T3", player(31, "e"), player(32, "f"), 1000)
	t4 := team(4, "T4", player(41, "g"), player(42, "h"), 1000)

	require.NoError(t, mm.QueueTeam(t1))
	require.NoError(t, mm.QueueTeam(t2))
	require.NoError(t, mm.QueueTeam(t3))
	require.NoError(t, mm.QueueTeam(t4))

	games := mm.GetGames()
	require.Len(t, games, 1)
	matches := games[0].Matches()
	require.Len(t, matches, 2)

	for _, m := range matches {
		r := m
		r.TeamOne.Points, r.TeamTwo.Points = 1, 0
		require.NoError(t, mm.InsertResult(r))
	}
	assert.Empty(t, mm.GetGames())

	require.NoError(t, mm.QueueTeam(t1))
	require.NoError(t, mm.QueueTeam(t2))
	require.NoError(t, mm.QueueTeam(t3))
	require.NoError(t, mm.QueueTeam(t4))

	games = mm.GetGames()
	require.Len(t, games, 1)
	round2 := games[0].Matches()
	require.Len(t, round2, 2)

	bannedOne := newPairKey(t1.ID, t2.ID)
	bannedTwo := newPairKey(t3.ID, t4.ID)
	for _, m := range round2 {
		pk := m.pairKey()
		assert.NotEqual(t, bannedOne, pk)
		assert.NotEqual(t, bannedTwo, pk)
	}
}

// Scenario F — principal fallback.
func TestScenarioF_PrincipalFallback(t *testing.T) {
	config := DefaultConfig()
	config.TriggerThreshold = 2
	config.Principal = "nonexistent"
	mm := newTestMatchMaker(t, config)

	t1 := team(1, "T1", player(11, "a"), player(12, "b"), 1000)
	t2 := team(2, "T2", player(21, "c"), player(22, "d"), 1000)
	require.NoError(t, mm.QueueTeam(t1))
	require.NoError(t, mm.QueueTeam(t2))

	games := mm.GetGames()
	require.Len(t, games, 1)
	assert.Len(t, games[0].Matches(), 1)
}

func TestMatchMaker_RejectsZeroBaseRound(t *testing.T) {
	_, err := New(DefaultConfig(), Round{}, nil)
	assert.Error(t, err)
}

func TestMatchMaker_Reset(t *testing.T) {
	config := DefaultConfig()
	config.TriggerThreshold = 10
	mm := newTestMatchMaker(t, config)

	t1 := team(1, "T1", player(11, "a"), player(12, "b"), 1000)
	require.NoError(t, mm.QueueTeam(t1))
	mm.Reset()
	assert.Empty(t, mm.GetQueue())
	assert.Empty(t, mm.GetGames())
	assert.False(t, mm.HasQueuedPlayer(11))
}

func TestMatchMaker_RoundTrip_QueueDequeue(t *testing.T) {
	config := DefaultConfig()
	config.TriggerThreshold = 10
	mm := newTestMatchMaker(t, config)
	before := mm.GetQueue()

	t1 := team(1, "T1", player(11, "a"), player(12, "b"), 1000)
	require.NoError(t, mm.QueueTeam(t1))
	require.NoError(t, mm.DequeueTeam(t1))

	assert.Equal(t, before, mm.GetQueue())
}
