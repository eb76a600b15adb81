package matchmaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idGen() func() int64 {
	var n int64
	return func() int64 {
		n++
		return n
	}
}

func TestMaxSum_PairsTwoTeams(t *testing.T) {
	config := DefaultConfig()
	base := principalBase{round: Round{ID: 1}, config: config, nextID: idGen()}
	p := MaxSum{base}

	t1 := team(1, "T1", player(11, "a"), player(12, "b"), 1000)
	t2 := team(2, "T2", player(21, "c"), player(22, "d"), 1000)

	matches, err := p.FormMatches([]Team{t1, t2}, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 0.5, matches[0].TeamOne.Points, 0.0001)
	assert.InDelta(t, 0.5, matches[0].TeamTwo.Points, 0.0001)
}

func TestFilterMatches_RejectsRepeatedTeam(t *testing.T) {
	t1 := team(1, "T1", player(11, "a"), player(12, "b"), 1000)
	t2 := team(2, "T2", player(21, "c"), player(22, "d"), 1000)
	t3 := team(3, "T3", player(31, "e"), player(32, "f"), 1000)

	m1 := Match{ID: 1, TeamOne: Result{Team: t1}, TeamTwo: Result{Team: t2}}
	m2 := Match{ID: 2, TeamOne: Result{Team: t2}, TeamTwo: Result{Team: t3}}

	assert.False(t, filterMatches([]Match{m1, m2}))
}

func TestPossibleSets_ExcludesHistory(t *testing.T) {
	config := DefaultConfig()
	base := principalBase{round: Round{ID: 1}, config: config, nextID: idGen()}

	t1 := team(1, "T1", player(11, "a"), player(12, "b"), 1000)
	t2 := team(2, "T2", player(21, "c"), player(22, "d"), 1000)
	t3 := team(3, "T3", player(31, "e"), player(32, "f"), 1000)
	t4 := team(4, "T4", player(41, "g"), player(42, "h"), 1000)

	history := []Match{
		{ID: 100, TeamOne: Result{Team: t1}, TeamTwo: Result{Team: t2}},
	}

	sets := base.possibleSets([]Team{t1, t2, t3, t4}, history)
	for _, s := range sets {
		for _, m := range s {
			pk := m.pairKey()
			assert.NotEqual(t, newPairKey(t1.ID, t2.ID), pk)
		}
	}
	require.NotEmpty(t, sets)
}

func TestPossibleSets_FallsBackWhenHistoryExhaustsCandidates(t *testing.T) {
	config := DefaultConfig()
	base := principalBase{round: Round{ID: 2}, config: config, nextID: idGen()}

	t1 := team(1, "T1", player(11, "a"), player(12, "b"), 1000)
	t2 := team(2, "T2", player(21, "c"), player(22, "d"), 1000)

	// Only two teams queued; their one possible pairing already happened.
	history := []Match{
		{ID: 100, TeamOne: Result{Team: t1}, TeamTwo: Result{Team: t2}},
	}

	sets := base.possibleSets([]Team{t1, t2}, history)
	require.NotEmpty(t, sets, "must fall back to re-pairing once history rules out every candidate")
	require.Len(t, sets[0], 1)
	assert.Equal(t, newPairKey(t1.ID, t2.ID), sets[0][0].pairKey())
}

func TestPeriod_SquareWave(t *testing.T) {
	config := DefaultConfig()
	config.Period = Period{Active: 4, DutyCycle: 2.5}
	base := principalBase{round: Round{ID: 0}, config: config}
	assert.Equal(t, 1.0, base.period())

	base.round = Round{ID: 2}
	assert.Equal(t, 0.0, base.period())
}

func TestGetPrincipal_FallsBackOnUnknownName(t *testing.T) {
	config := DefaultConfig()
	config.Principal = "nonexistent"
	p := GetPrincipal(Round{ID: 1}, config, idGen(), nil)
	_, ok := p.(MaxSum)
	assert.True(t, ok)
}

func TestGetPrincipal_ResolvesEachKnownName(t *testing.T) {
	cases := []struct {
		name PrincipalName
		want any
	}{
		{PrincipalMaxSum, MaxSum{}},
		{PrincipalMinVariance, MinVariance{}},
		{PrincipalMaxMin, MaxMin{}},
		{PrincipalMinMax, MinMax{}},
	}
	for _, tc := range cases {
		config := DefaultConfig()
		config.Principal = tc.name
		p := GetPrincipal(Round{ID: 1}, config, idGen(), nil)
		assert.IsType(t, tc.want, p)
	}
}

func TestCombinationsOf(t *testing.T) {
	items := []int{1, 2, 3, 4}
	combos := combinationsOf(items, 2)
	assert.Len(t, combos, 6)
	assert.Equal(t, []int{1, 2}, combos[0])
	assert.Equal(t, []int{3, 4}, combos[len(combos)-1])
}
