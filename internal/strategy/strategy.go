package strategy

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/roach88/flipdeck/internal/deck"
)

// Strategy decides one turn.
type Strategy interface {
	// Name returns the strategy kind.
	Name() string

	// Decide performs this turn's observe/commit/relocate against e.
	// Protocol violations are returned wrapped; the game must stop.
	Decide(e *deck.Engine) error
}

// Kind names a strategy variant.
type Kind string

const (
	KindRandom    Kind = "random"
	KindFirst     Kind = "first"
	KindPartition Kind = "partition"
	KindLinear    Kind = "linear"
)

// Kinds returns all strategy kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindRandom, KindFirst, KindPartition, KindLinear}
}

// ParseKind resolves a strategy name. Matching is case-insensitive.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q: must be one of %v", name, Kinds())
}

// New creates a strategy of the given kind. rng is only used by Random and
// may be nil for the others.
func New(kind Kind, rng *rand.Rand) (Strategy, error) {
	switch kind {
	case KindRandom:
		if rng == nil {
			return nil, fmt.Errorf("random strategy requires a random source")
		}
		return &Random{rng: rng}, nil
	case KindFirst:
		return First{}, nil
	case KindPartition:
		return Partition{}, nil
	case KindLinear:
		return Linear{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy kind: %q", kind)
	}
}

// InvariantError reports that a strategy found the sequence in a state its
// algorithm guarantees cannot happen.
type InvariantError struct {
	Strategy string
	Detail   string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: invariant violated: %s", e.Strategy, e.Detail)
}

// firstHidden returns the index of the first uncommitted slot, or -1.
func firstHidden(slots []deck.Slot) int {
	for i, s := range slots {
		if !s.Committed {
			return i
		}
	}
	return -1
}

// probe observes index and commits the card when it is the next required
// value. It reports the observed value.
func probe(e *deck.Engine, index int) (int, error) {
	v, err := e.Observe(index)
	if err != nil {
		return 0, fmt.Errorf("observe card %d: %w", index, err)
	}
	if e.TurnRecord().CommitEligible {
		if err := e.Commit(); err != nil {
			return 0, fmt.Errorf("commit card %d: %w", index, err)
		}
	}
	return v, nil
}

func relocate(e *deck.Engine, target int) error {
	if err := e.Relocate(target); err != nil {
		return fmt.Errorf("relocate to %d: %w", target, err)
	}
	return nil
}
