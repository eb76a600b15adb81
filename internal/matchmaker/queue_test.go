package matchmaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func player(id int64, name string) Player { return Player{DiscordID: id, Name: name} }

func team(id int64, name string, p1, p2 Player, elo float64) Team {
	return Team{ID: id, Name: name, PlayerOne: p1, PlayerTwo: p2, Elo: elo}
}

func TestQueueContext_QueueAndDequeue(t *testing.T) {
	q := NewQueueContext(Round{ID: 1}, 0)

	p1, p2, p3 := player(1, "a"), player(2, "b"), player(3, "c")
	t1 := team(10, "T1", p1, p2, 1000)
	t2 := team(11, "T2", p1, p3, 1000)

	require.NoError(t, q.Queue(t1))
	assert.Equal(t, 1, q.Len())

	err := q.Queue(t2)
	require.Error(t, err)
	var aq *AlreadyQueuedError
	require.ErrorAs(t, err, &aq)
	assert.Equal(t, p1.DiscordID, aq.Player)
	assert.Equal(t, t1.ID, aq.TeamID)

	require.NoError(t, q.Dequeue(t1))
	assert.Equal(t, 0, q.Len())
	assert.True(t, q.IsEmpty())
}

func TestQueueContext_DequeueNotQueued(t *testing.T) {
	q := NewQueueContext(Round{ID: 1}, 0)
	t1 := team(10, "T1", player(1, "a"), player(2, "b"), 1000)
	err := q.Dequeue(t1)
	assert.ErrorIs(t, err, ErrNotQueued)
}

func TestQueueContext_MissingFields(t *testing.T) {
	q := NewQueueContext(Round{ID: 1}, 0)
	err := q.Queue(Team{})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestQueueContext_HistoryRing(t *testing.T) {
	q := NewQueueContext(Round{ID: 1}, 2)
	m1 := Match{ID: 1}
	m2 := Match{ID: 2}
	m3 := Match{ID: 3}
	q.PushHistory(m1)
	q.PushHistory(m2)
	q.PushHistory(m3)

	hist := q.History()
	require.Len(t, hist, 2)
	assert.Equal(t, int64(2), hist[0].ID)
	assert.Equal(t, int64(3), hist[1].ID)
}

func TestQueueContext_HistoryDisabled(t *testing.T) {
	q := NewQueueContext(Round{ID: 1}, 0)
	q.PushHistory(Match{ID: 1})
	assert.Empty(t, q.History())
}

func TestQueueContext_Lookup(t *testing.T) {
	q := NewQueueContext(Round{ID: 1}, 0)
	p1, p2 := player(1, "a"), player(2, "b")
	t1 := team(10, "T1", p1, p2, 1000)
	require.NoError(t, q.Queue(t1))

	got, ok := q.Lookup(ByPlayer(1))
	require.True(t, ok)
	assert.Equal(t, t1.ID, got.ID)

	got, ok = q.Lookup(ByTeam(10))
	require.True(t, ok)
	assert.Equal(t, t1.ID, got.ID)

	_, ok = q.Lookup(ByPlayer(99))
	assert.False(t, ok)
}

func TestQueueContext_AdvanceRound(t *testing.T) {
	q := NewQueueContext(Round{ID: 1}, 0)
	q.AdvanceRound()
	assert.Equal(t, int64(2), q.Round().ID)
}
