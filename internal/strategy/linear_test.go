package strategy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flipdeck/internal/deck"
)

func TestLinearFourCardScenario(t *testing.T) {
	e, log := engineFor(t, 3, 1, 4, 2)
	s := Linear{}

	e.StartTurn()
	require.NoError(t, s.Decide(e))
	assert.Equal(t, []int{1, 4, 2, 3}, e.Snapshot().Values)

	e.StartTurn()
	require.NoError(t, s.Decide(e))
	assert.Equal(t, 1, e.Frontier())

	turns := 2 + play(t, e, s, 100)
	assert.Equal(t, 6, turns)
	assert.Equal(t, 4, log.Count(deck.EventCommit))
}

func TestLinearMovesFlippedCardToFront(t *testing.T) {
	// committed 1 at index 3 is an unfinished divider for [2,4,3]:
	// 2 is the next value, so it is flipped and sent to the front.
	e := restoreFor(t, []int{2, 4, 3, 1}, []bool{false, false, false, true})
	e.StartTurn()
	require.NoError(t, Linear{}.Decide(e))

	assert.Equal(t, []int{2, 4, 3, 1}, e.Snapshot().Values)
	assert.Equal(t, []bool{true, false, false, true}, e.Snapshot().Committed)
	assert.Equal(t, 2, e.Frontier())
}

func TestLinearPartitionsAroundDivider(t *testing.T) {
	// half = (1 + 3 + 1) / 2 = 2: 4 > 2 goes right of the divider.
	e := restoreFor(t, []int{4, 3, 2, 1}, []bool{false, false, false, true})
	e.StartTurn()
	require.NoError(t, Linear{}.Decide(e))
	assert.Equal(t, []int{3, 2, 1, 4}, e.Snapshot().Values)

	// 3 > 2 goes right as well
	e.StartTurn()
	require.NoError(t, Linear{}.Decide(e))
	assert.Equal(t, []int{2, 1, 3, 4}, e.Snapshot().Values)
}

func TestLinearAllPermutations(t *testing.T) {
	for n := 1; n <= 6; n++ {
		permutations(n, func(values []int) {
			e, _ := engineFor(t, values...)
			turns := play(t, e, Linear{}, nLogNBound(n))
			require.Equal(t, n, e.Frontier(), "values %v", values)
			require.LessOrEqual(t, turns, nLogNBound(n), "values %v", values)
		})
	}
}

func TestLinearRandomDecks(t *testing.T) {
	rng := rand.New(rand.NewSource(77))
	for _, n := range []int{13, 32, 64, 150} {
		for game := 0; game < 20; game++ {
			e := deck.New(deck.WithRand(rng), deck.WithLogger(quietLogger()))
			require.NoError(t, e.Reset(n))
			turns := play(t, e, Linear{}, nLogNBound(n))
			assert.LessOrEqual(t, turns, nLogNBound(n))
		}
	}
}
