package deck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	e, _ := newTestEngine(t, 3, 1, 4, 2)
	e.StartTurn()
	_, err := e.Observe(1)
	require.NoError(t, err)
	require.NoError(t, e.Commit())
	require.NoError(t, e.Relocate(3))

	snap := e.Snapshot()
	assert.Equal(t, Snapshot{
		Values:    []int{3, 4, 2, 1},
		Committed: []bool{false, false, false, true},
		Frontier:  1,
	}, snap)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored, err := Restore(decoded, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, snap, restored.Snapshot())
	assert.Equal(t, e.Slots(), restored.Slots())
	assert.Equal(t, 1, restored.Frontier())
	assert.False(t, restored.IsTerminal())

	// both engines accept and reject the same next moves
	e.StartTurn()
	restored.StartTurn()
	v1, err1 := e.Observe(2)
	v2, err2 := restored.Observe(2)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, v1, v2)
	assert.Equal(t, e.TurnRecord(), restored.TurnRecord())
}

func TestRestoreTerminalSnapshot(t *testing.T) {
	restored, err := Restore(Snapshot{
		Values:    []int{2, 1},
		Committed: []bool{true, true},
		Frontier:  2,
	})
	require.NoError(t, err)
	assert.True(t, restored.IsTerminal())
}

func TestRestoreRejectsInconsistentSnapshots(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		msg  string
	}{
		{
			name: "length mismatch",
			snap: Snapshot{Values: []int{1, 2}, Committed: []bool{false}},
			msg:  "committed flags",
		},
		{
			name: "not a permutation",
			snap: Snapshot{Values: []int{1, 1}, Committed: []bool{false, false}},
			msg:  "repeats value",
		},
		{
			name: "stale frontier",
			snap: Snapshot{Values: []int{1, 2}, Committed: []bool{true, false}, Frontier: 0},
			msg:  "does not match",
		},
		{
			name: "gap in committed values",
			snap: Snapshot{Values: []int{1, 2, 3}, Committed: []bool{false, false, true}, Frontier: 3},
			msg:  "commits 1 cards",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore(tt.snap)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSnapshotCanonicalAndID(t *testing.T) {
	snap := Snapshot{
		Values:    []int{2, 1, 3},
		Committed: []bool{false, true, false},
		Frontier:  1,
	}

	data, err := snap.Canonical()
	require.NoError(t, err)
	assert.Equal(t, `{"committed":[false,true,false],"frontier":1,"values":[2,1,3]}`, string(data))

	id1, err := snap.ID()
	require.NoError(t, err)
	assert.Len(t, id1, 64)

	restored, err := Restore(snap)
	require.NoError(t, err)
	id2, err := restored.Snapshot().ID()
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	other := snap
	other.Values = []int{3, 1, 2}
	id3, err := other.ID()
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}
