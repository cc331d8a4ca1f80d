package strategy

import (
	"fmt"

	"github.com/roach88/flipdeck/internal/deck"
)

// Partition is the recursive divide-and-conquer strategy.
//
// A block is a contiguous run of slots [offset, offset+n) whose values are
// known to be exactly valueOffset+1 .. valueOffset+n. Inside a block the
// committed card with value valueOffset+1 is the divider: cards left of it
// hold the next smallest values, cards right of it the largest n/2 values.
// Each turn the strategy walks the blocks left to right and acts on the
// first one that still needs work.
type Partition struct{}

// Name implements Strategy.
func (Partition) Name() string { return string(KindPartition) }

// block is a read-only window onto the sequence.
type block struct {
	slots       []deck.Slot
	offset      int // global index of slots[0]
	valueOffset int // every value in the block is > valueOffset
}

// Decide implements Strategy.
func (p Partition) Decide(e *deck.Engine) error {
	_, err := p.solve(e, block{slots: e.Slots()})
	return err
}

// solve acts on the first block that needs work. It reports whether this
// turn's move was made, so callers stop exploring further blocks.
func (p Partition) solve(e *deck.Engine, b block) (bool, error) {
	n := len(b.slots)
	if n == 0 || allCommitted(b.slots) {
		return false, nil
	}

	if n == 1 {
		v, err := e.Observe(b.offset)
		if err != nil {
			return false, fmt.Errorf("observe card %d: %w", b.offset, err)
		}
		if v != b.valueOffset+1 {
			return false, &InvariantError{
				Strategy: p.Name(),
				Detail:   fmt.Sprintf("single card %d holds %d, want %d", b.offset, v, b.valueOffset+1),
			}
		}
		if err := e.Commit(); err != nil {
			return false, fmt.Errorf("commit card %d: %w", b.offset, err)
		}
		return true, nil
	}

	if pivot := maxCommitted(b.slots); pivot == 0 {
		return true, p.linearProbe(e, b)
	}

	divider := -1
	for i, s := range b.slots {
		if s.Committed && s.Value == b.valueOffset+1 {
			divider = i
		}
	}
	if divider < 0 {
		return false, &InvariantError{
			Strategy: p.Name(),
			Detail:   fmt.Sprintf("no divider with value %d in block at %d", b.valueOffset+1, b.offset),
		}
	}

	targetRight := n / 2
	curRight := n - 1 - divider
	if curRight < targetRight {
		return true, p.rebalance(e, b, divider, targetRight)
	}

	left := block{
		slots:       b.slots[:divider],
		offset:      b.offset,
		valueOffset: b.valueOffset + 1,
	}
	if acted, err := p.solve(e, left); acted || err != nil {
		return acted, err
	}
	right := block{
		slots:       b.slots[divider+1:],
		offset:      b.offset + divider + 1,
		valueOffset: b.valueOffset + divider + 1,
	}
	return p.solve(e, right)
}

// linearProbe handles a block with nothing committed: look at its first
// card, flip it if it is the block's smallest value, and send it to the
// block's end.
func (p Partition) linearProbe(e *deck.Engine, b block) error {
	v, err := e.Observe(b.offset)
	if err != nil {
		return fmt.Errorf("observe card %d: %w", b.offset, err)
	}
	if v == b.valueOffset+1 {
		if err := e.Commit(); err != nil {
			return fmt.Errorf("commit card %d: %w", b.offset, err)
		}
	}
	return relocate(e, b.offset+len(b.slots)-1)
}

// rebalance moves the block's first card to just after the divider when it
// belongs to the top targetRight values, otherwise to just before it.
// Targets account for the removal of the first card shifting the divider
// one place left.
func (p Partition) rebalance(e *deck.Engine, b block, divider, targetRight int) error {
	v, err := e.Observe(b.offset)
	if err != nil {
		return fmt.Errorf("observe card %d: %w", b.offset, err)
	}
	if v-b.valueOffset > len(b.slots)-targetRight {
		return relocate(e, b.offset+divider)
	}
	return relocate(e, b.offset+divider-1)
}

func allCommitted(slots []deck.Slot) bool {
	for _, s := range slots {
		if !s.Committed {
			return false
		}
	}
	return true
}

// maxCommitted returns the largest committed value, 0 if none.
func maxCommitted(slots []deck.Slot) int {
	best := 0
	for _, s := range slots {
		if s.Committed && s.Value > best {
			best = s.Value
		}
	}
	return best
}
