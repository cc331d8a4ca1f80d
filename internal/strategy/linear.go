package strategy

import (
	"fmt"

	"github.com/roach88/flipdeck/internal/deck"
)

// Linear is the single-pass partition strategy.
//
// Committed cards are moved to the front as they are flipped, so the
// sequence always reads: committed prefix, unresolved interval, divider,
// unresolved interval, divider, ... Each turn Linear locates the first
// unresolved interval and the committed card after it, then decides from
// positions alone whether the split around that divider is still in
// progress or already complete. A complete split shrinks the interval to the
// cards before the divider, which are probed linearly.
type Linear struct{}

// Name implements Strategy.
func (Linear) Name() string { return string(KindLinear) }

// Decide implements Strategy.
func (l Linear) Decide(e *deck.Engine) error {
	slots := e.Slots()
	n := len(slots)
	frontier := e.Frontier()

	start := 0
	for start < n && slots[start].Committed {
		start++
	}
	if start == n {
		return nil
	}
	dividerLoc := start + 1
	for dividerLoc < n && !slots[dividerLoc].Committed {
		dividerLoc++
	}
	end := dividerLoc + 1
	for end < n && !slots[end].Committed {
		end++
	}
	end--
	if end > n-1 {
		end = n - 1
	}

	partitioning := dividerLoc <= n-1
	if partitioning {
		dividerValue := slots[dividerLoc].Value
		// values already flipped and moved to the front that belonged
		// after this divider
		ahead := frontier - dividerValue
		half := (dividerValue + end + 1) / 2
		correctLoc := start + (half - dividerValue) - ahead
		if dividerLoc == correctLoc {
			partitioning = false
			end = dividerLoc - 1
		}
	}

	if !partitioning {
		if _, err := probe(e, start); err != nil {
			return err
		}
		return relocate(e, end)
	}

	half := (slots[dividerLoc].Value + end + 1) / 2
	v, err := e.Observe(start)
	if err != nil {
		return fmt.Errorf("observe card %d: %w", start, err)
	}
	if v == frontier+1 {
		if err := e.Commit(); err != nil {
			return fmt.Errorf("commit card %d: %w", start, err)
		}
		return relocate(e, 0)
	}
	if v > half {
		return relocate(e, dividerLoc)
	}
	return relocate(e, dividerLoc-1)
}
