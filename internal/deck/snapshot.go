package deck

import (
	"fmt"

	"github.com/roach88/flipdeck/internal/canonical"
)

// Snapshot is the complete observable state of a game between turns.
// Restoring it reproduces identical behavior for every later decision.
type Snapshot struct {
	Values    []int  `json:"values"`
	Committed []bool `json:"committed"`
	Frontier  int    `json:"frontier"`
}

// Snapshot captures the sequence. The turn record is not part of it:
// snapshots are taken between turns.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Values:    make([]int, len(e.cards)),
		Committed: make([]bool, len(e.cards)),
		Frontier:  e.Frontier(),
	}
	for i, c := range e.cards {
		s.Values[i] = c.Value
		s.Committed[i] = c.Committed
	}
	return s
}

// Restore rebuilds an engine from a snapshot.
//
// The snapshot must be a permutation of 1..N whose committed values are
// exactly 1..Frontier.
func Restore(s Snapshot, opts ...Option) (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	e := New(opts...)
	e.cards = make([]Element, len(s.Values))
	for i, v := range s.Values {
		e.cards[i] = Element{Value: v, Committed: s.Committed[i]}
	}
	e.terminal = s.Frontier == len(s.Values)
	return e, nil
}

// Validate checks the snapshot invariants.
func (s Snapshot) Validate() error {
	if len(s.Values) != len(s.Committed) {
		return fmt.Errorf("snapshot has %d values but %d committed flags", len(s.Values), len(s.Committed))
	}
	if err := checkPermutation(s.Values); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	frontier := 0
	committed := 0
	for i, v := range s.Values {
		if !s.Committed[i] {
			continue
		}
		committed++
		if v > frontier {
			frontier = v
		}
	}
	if frontier != s.Frontier {
		return fmt.Errorf("snapshot frontier %d does not match committed cards (max %d)", s.Frontier, frontier)
	}
	if committed != frontier {
		return fmt.Errorf("snapshot commits %d cards but frontier is %d", committed, frontier)
	}
	return nil
}

// Canonical returns the canonical JSON encoding of the snapshot.
func (s Snapshot) Canonical() ([]byte, error) {
	return canonical.Marshal(map[string]any{
		"values":    s.Values,
		"committed": s.Committed,
		"frontier":  s.Frontier,
	})
}

// ID returns a content hash identifying the snapshot.
func (s Snapshot) ID() (string, error) {
	data, err := s.Canonical()
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return canonical.Hash(canonical.DomainSnapshot, data), nil
}
