package strategy

import (
	"fmt"
	"math/rand"

	"github.com/roach88/flipdeck/internal/deck"
)

// Random observes a uniformly random uncommitted card and commits it when
// eligible. It never relocates. Expected O(N^2) turns.
type Random struct {
	rng *rand.Rand
}

// Name implements Strategy.
func (r *Random) Name() string { return string(KindRandom) }

// Decide implements Strategy.
func (r *Random) Decide(e *deck.Engine) error {
	slots := e.Slots()
	hidden := make([]int, 0, len(slots))
	for i, s := range slots {
		if !s.Committed {
			hidden = append(hidden, i)
		}
	}
	if len(hidden) == 0 {
		return nil
	}
	if want := e.Size() - e.Frontier(); len(hidden) != want {
		return &InvariantError{
			Strategy: r.Name(),
			Detail:   fmt.Sprintf("%d hidden cards but %d values remain", len(hidden), want),
		}
	}
	_, err := probe(e, hidden[r.rng.Intn(len(hidden))])
	return err
}

// First observes the first uncommitted card, commits it when eligible and
// moves it to the back of the sequence. Always terminates, O(N^2) turns.
type First struct{}

// Name implements Strategy.
func (First) Name() string { return string(KindFirst) }

// Decide implements Strategy.
func (First) Decide(e *deck.Engine) error {
	idx := firstHidden(e.Slots())
	if idx < 0 {
		return nil
	}
	if _, err := probe(e, idx); err != nil {
		return err
	}
	return relocate(e, e.Size()-1)
}
