package deck

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, values ...int) (*Engine, *EventLog) {
	t.Helper()
	log := &EventLog{}
	e, err := FromValues(values, WithLogger(quietLogger()), WithRecorder(log))
	require.NoError(t, err)
	return e, log
}

func values(e *Engine) []int {
	return e.Snapshot().Values
}

func TestFromValuesRejectsNonPermutations(t *testing.T) {
	tests := []struct {
		name   string
		values []int
	}{
		{"empty", []int{}},
		{"zero value", []int{0, 1}},
		{"too large", []int{1, 3}},
		{"duplicate", []int{1, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromValues(tt.values)
			require.Error(t, err)
		})
	}
}

func TestResetDealsPermutation(t *testing.T) {
	e := New(WithRand(rand.New(rand.NewSource(7))), WithLogger(quietLogger()))
	require.NoError(t, e.Reset(13))

	assert.Equal(t, 13, e.Size())
	assert.Equal(t, 0, e.Frontier())
	assert.False(t, e.IsTerminal())
	require.NoError(t, e.Snapshot().Validate())

	for i := 0; i < e.Size(); i++ {
		committed, err := e.IsCommitted(i)
		require.NoError(t, err)
		assert.False(t, committed)
	}
}

func TestResetIsDeterministicForSeed(t *testing.T) {
	a := New(WithRand(rand.New(rand.NewSource(42))))
	b := New(WithRand(rand.New(rand.NewSource(42))))
	require.NoError(t, a.Reset(20))
	require.NoError(t, b.Reset(20))

	assert.Equal(t, values(a), values(b))
}

func TestResetRejectsEmptyDeck(t *testing.T) {
	e := New()
	require.Error(t, e.Reset(0))
	require.Error(t, e.Reset(-3))
}

func TestResetClearsTerminalAndTurnState(t *testing.T) {
	e, _ := newTestEngine(t, 1)
	e.StartTurn()
	_, err := e.Observe(0)
	require.NoError(t, err)
	require.NoError(t, e.Commit())
	require.True(t, e.IsTerminal())

	require.NoError(t, e.Reset(3))
	assert.False(t, e.IsTerminal())
	assert.Equal(t, 0, e.Turn())
	assert.False(t, e.TurnRecord().Observed)
	assert.Equal(t, 0, e.Frontier())
}

func TestObserveLocksTurn(t *testing.T) {
	e, _ := newTestEngine(t, 3, 1, 4, 2)
	e.StartTurn()

	v, err := e.Observe(0)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	rec := e.TurnRecord()
	assert.True(t, rec.Observed)
	assert.Equal(t, 0, rec.ObservedIndex)
	assert.False(t, rec.CommitEligible)

	_, err = e.Observe(1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDoubleQuery)
	assert.Equal(t, ErrCodeDoubleQuery, CodeOf(err))

	// the failed observe must not move the lock
	assert.Equal(t, 0, e.TurnRecord().ObservedIndex)
}

func TestObserveSameCardTwiceIsDoubleQuery(t *testing.T) {
	e, _ := newTestEngine(t, 2, 1)
	e.StartTurn()
	_, err := e.Observe(0)
	require.NoError(t, err)

	_, err = e.Observe(0)
	assert.ErrorIs(t, err, ErrDoubleQuery)
}

func TestObserveCommittedCardIsFree(t *testing.T) {
	e, log := newTestEngine(t, 1, 2, 3)
	e.StartTurn()
	_, err := e.Observe(0)
	require.NoError(t, err)
	require.NoError(t, e.Commit())

	e.StartTurn()
	v, err := e.Observe(0)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.False(t, e.TurnRecord().Observed, "committed observe must not lock the turn")

	v, err = e.Observe(1)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.True(t, e.TurnRecord().CommitEligible)

	// committed card is still free after the lock is taken
	v, err = e.Observe(0)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	assert.Equal(t, 2, log.Count(EventObserve))
}

func TestObserveOutOfRange(t *testing.T) {
	e, _ := newTestEngine(t, 1, 2)
	e.StartTurn()

	for _, idx := range []int{-1, 2, 100} {
		_, err := e.Observe(idx)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", idx)
	}
	assert.False(t, e.TurnRecord().Observed)
}

func TestCommitRequiresObserve(t *testing.T) {
	e, _ := newTestEngine(t, 1, 2)
	e.StartTurn()

	err := e.Commit()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotObserved)
	assert.NotErrorIs(t, err, ErrNotEligible)
}

func TestCommitRequiresEligibility(t *testing.T) {
	e, _ := newTestEngine(t, 2, 1)
	e.StartTurn()
	_, err := e.Observe(0)
	require.NoError(t, err)

	err = e.Commit()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotEligible)

	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 0, pe.Index)
	assert.Equal(t, 1, pe.Turn)
	assert.Contains(t, pe.Error(), "NOT_ELIGIBLE")

	committed, err := e.IsCommitted(0)
	require.NoError(t, err)
	assert.False(t, committed)
}

func TestCommitTwiceInOneTurnFails(t *testing.T) {
	e, _ := newTestEngine(t, 1, 2)
	e.StartTurn()
	_, err := e.Observe(0)
	require.NoError(t, err)
	require.NoError(t, e.Commit())

	assert.ErrorIs(t, e.Commit(), ErrNotEligible)
	assert.Equal(t, 1, e.Frontier())
}

func TestCommitLastValueEndsGame(t *testing.T) {
	e, _ := newTestEngine(t, 2, 1)

	e.StartTurn()
	_, err := e.Observe(1)
	require.NoError(t, err)
	require.NoError(t, e.Commit())
	assert.False(t, e.IsTerminal())

	e.StartTurn()
	_, err = e.Observe(0)
	require.NoError(t, err)
	require.NoError(t, e.Commit())
	assert.True(t, e.IsTerminal())
	assert.Equal(t, 2, e.Frontier())
}

func TestRelocateRequiresObserve(t *testing.T) {
	e, _ := newTestEngine(t, 1, 2)
	e.StartTurn()
	assert.ErrorIs(t, e.Relocate(1), ErrNotObserved)
}

func TestRelocateOutOfRange(t *testing.T) {
	e, _ := newTestEngine(t, 3, 1, 2)
	e.StartTurn()
	_, err := e.Observe(0)
	require.NoError(t, err)

	assert.ErrorIs(t, e.Relocate(-1), ErrIndexOutOfRange)
	assert.ErrorIs(t, e.Relocate(3), ErrIndexOutOfRange)
	assert.Equal(t, []int{3, 1, 2}, values(e))
}

func TestRelocateRemoveThenInsert(t *testing.T) {
	tests := []struct {
		name     string
		from     int
		target   int
		expected []int
	}{
		{"front to back", 0, 4, []int{2, 3, 4, 5, 1}},
		{"back to front", 4, 0, []int{5, 1, 2, 3, 4}},
		{"forward one", 1, 2, []int{1, 3, 2, 4, 5}},
		{"backward two", 3, 1, []int{1, 4, 2, 3, 5}},
		{"in place", 2, 2, []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, 1, 2, 3, 4, 5)
			e.StartTurn()
			_, err := e.Observe(tt.from)
			require.NoError(t, err)
			require.NoError(t, e.Relocate(tt.target))

			assert.Equal(t, tt.expected, values(e))
			assert.Equal(t, 5, e.Size())
			assert.Equal(t, tt.target, e.TurnRecord().ObservedIndex)
		})
	}
}

func TestRelocateClearsEligibility(t *testing.T) {
	e, _ := newTestEngine(t, 2, 1)
	e.StartTurn()
	_, err := e.Observe(1)
	require.NoError(t, err)
	require.True(t, e.TurnRecord().CommitEligible)

	require.NoError(t, e.Relocate(0))
	assert.False(t, e.TurnRecord().CommitEligible)
	assert.ErrorIs(t, e.Commit(), ErrNotEligible)
}

func TestRelocateCommittedCardKeepsFlag(t *testing.T) {
	e, _ := newTestEngine(t, 1, 3, 2)
	e.StartTurn()
	_, err := e.Observe(0)
	require.NoError(t, err)
	require.NoError(t, e.Commit())
	require.NoError(t, e.Relocate(2))

	committed, err := e.IsCommitted(2)
	require.NoError(t, err)
	assert.True(t, committed)
	v, err := e.PeekValue(2)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, e.Frontier())
}

func TestPeekValueHidden(t *testing.T) {
	e, _ := newTestEngine(t, 2, 1)
	_, err := e.PeekValue(0)
	assert.ErrorIs(t, err, ErrHiddenValue)

	_, err = e.PeekValue(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = e.IsCommitted(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestSlotsHideValues(t *testing.T) {
	e, _ := newTestEngine(t, 2, 1, 3)
	e.StartTurn()
	_, err := e.Observe(1)
	require.NoError(t, err)
	require.NoError(t, e.Commit())

	assert.Equal(t, []Slot{
		{Value: 0, Committed: false},
		{Value: 1, Committed: true},
		{Value: 0, Committed: false},
	}, e.Slots())
}

func TestStartTurnResetsRecord(t *testing.T) {
	e, _ := newTestEngine(t, 2, 1)
	e.StartTurn()
	_, err := e.Observe(0)
	require.NoError(t, err)

	e.StartTurn()
	assert.Equal(t, TurnRecord{ObservedIndex: -1}, e.TurnRecord())
	assert.Equal(t, 2, e.Turn())

	_, err = e.Observe(1)
	require.NoError(t, err)
}

// The four-card walkthrough: [3,1,4,2] with nothing committed.
func TestFourCardWalkthrough(t *testing.T) {
	e, log := newTestEngine(t, 3, 1, 4, 2)

	// Turn 1: 3 is not eligible, send it to the back.
	e.StartTurn()
	v, err := e.Observe(0)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.ErrorIs(t, e.Commit(), ErrNotEligible)
	require.NoError(t, e.Relocate(3))
	assert.Equal(t, []int{1, 4, 2, 3}, values(e))

	// Turn 2: 1 is eligible.
	e.StartTurn()
	v, err = e.Observe(0)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	require.NoError(t, e.Commit())
	assert.Equal(t, 1, e.Frontier())
	committed, err := e.IsCommitted(0)
	require.NoError(t, err)
	assert.True(t, committed)

	assert.Equal(t, []EventKind{EventObserve, EventRelocate, EventObserve, EventCommit},
		kinds(log.Events))
	assert.Equal(t, int64(4), log.Events[3].Seq)
	assert.Equal(t, 2, log.Events[3].Turn)
}

// probe plays the always-first policy directly against the engine.
func probe(t *testing.T, e *Engine) {
	t.Helper()
	e.StartTurn()
	first := -1
	for i, s := range e.Slots() {
		if !s.Committed {
			first = i
			break
		}
	}
	require.GreaterOrEqual(t, first, 0)
	v, err := e.Observe(first)
	require.NoError(t, err)
	if v == e.Frontier()+1 {
		require.NoError(t, e.Commit())
	}
	require.NoError(t, e.Relocate(e.Size()-1))
}

func TestProtocolPropertiesUnderPlay(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for game := 0; game < 25; game++ {
		e := New(WithRand(rng), WithLogger(quietLogger()))
		n := 1 + rng.Intn(12)
		require.NoError(t, e.Reset(n))

		prev := e.Frontier()
		for turns := 0; !e.IsTerminal(); turns++ {
			require.Less(t, turns, n*n+n, "game did not finish")
			probe(t, e)

			// conservation
			require.Equal(t, n, e.Size())
			require.NoError(t, e.Snapshot().Validate())

			// monotonic frontier, +1 per commit at most
			cur := e.Frontier()
			require.GreaterOrEqual(t, cur, prev)
			require.LessOrEqual(t, cur, prev+1)
			prev = cur
		}
		assert.Equal(t, n, e.Frontier())
	}
}

func TestEligibilityGating(t *testing.T) {
	// commit succeeds iff the observed value was frontier+1 at observe time
	rng := rand.New(rand.NewSource(3))
	e := New(WithRand(rng), WithLogger(quietLogger()))
	require.NoError(t, e.Reset(8))

	for !e.IsTerminal() {
		e.StartTurn()
		hidden := []int{}
		for i, s := range e.Slots() {
			if !s.Committed {
				hidden = append(hidden, i)
			}
		}
		idx := hidden[rng.Intn(len(hidden))]
		want := e.Frontier() + 1
		v, err := e.Observe(idx)
		require.NoError(t, err)

		err = e.Commit()
		if v == want {
			require.NoError(t, err)
		} else {
			require.ErrorIs(t, err, ErrNotEligible)
		}
	}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestSetRecorderSwapsSink(t *testing.T) {
	e, first := newTestEngine(t, 2, 1)

	var kinds []EventKind
	e.SetRecorder(RecorderFunc(func(ev Event) { kinds = append(kinds, ev.Kind) }))

	e.StartTurn()
	_, err := e.Observe(1)
	require.NoError(t, err)
	require.NoError(t, e.Commit())

	assert.Empty(t, first.Events)
	assert.Equal(t, []EventKind{EventObserve, EventCommit}, kinds)

	e.SetRecorder(nil)
	require.NoError(t, e.Relocate(0))
	assert.Len(t, kinds, 2)
}
