package matchmaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGames_PushGameRejectsDuplicateKey(t *testing.T) {
	g := NewGames()
	ctx1 := NewInGameContext(Round{ID: 1}, nil, 32)
	ctx2 := NewInGameContext(Round{ID: 1}, nil, 32)

	require.NoError(t, g.PushGame(ctx1))
	err := g.PushGame(ctx2)
	assert.ErrorIs(t, err, ErrGameAlreadyExist)
}

func TestGames_AddResultRoutesAndReturnsKey(t *testing.T) {
	g := NewGames()
	m := makeMatch(1, 100, 200, 0.5, 0.5)
	ctx := NewInGameContext(Round{ID: 7}, []Match{m}, 32)
	require.NoError(t, g.PushGame(ctx))

	reported := m
	reported.TeamOne.Points, reported.TeamTwo.Points = 1, 0

	key, err := g.AddResult(reported)
	require.NoError(t, err)
	assert.Equal(t, int64(7), key)
}

func TestGames_AddResultUnknownMatch(t *testing.T) {
	g := NewGames()
	_, err := g.AddResult(makeMatch(99, 1, 2, 0.5, 0.5))
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestGames_RemoveGame(t *testing.T) {
	g := NewGames()
	ctx := NewInGameContext(Round{ID: 1}, nil, 32)
	require.NoError(t, g.PushGame(ctx))
	g.RemoveGame(1)
	assert.Equal(t, 0, g.Len())
}
