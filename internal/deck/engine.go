package deck

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"
)

// Element is one card: its value and whether it has been committed.
// Committed flips false to true exactly once and never reverts.
type Element struct {
	Value     int
	Committed bool
}

// Slot is the public view of a card. Value is 0 while the card is hidden.
type Slot struct {
	Value     int
	Committed bool
}

// TurnRecord is the per-turn lock state. It lives for exactly one turn.
type TurnRecord struct {
	Observed       bool
	ObservedIndex  int
	CommitEligible bool
}

// Engine owns the card sequence and enforces the turn protocol.
type Engine struct {
	cards    []Element
	rec      TurnRecord
	terminal bool
	turn     int
	seq      int64

	rng      *rand.Rand
	logger   *slog.Logger
	recorder Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used by Reset.
// Default: a source seeded from the wall clock.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithLogger sets the logger that receives the debug trace of revealed
// values. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRecorder registers a recorder for protocol events.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		e.recorder = r
	}
}

// SetRecorder replaces the event recorder. nil disables recording.
func (e *Engine) SetRecorder(r Recorder) {
	e.recorder = r
}

// New creates an empty engine. Call Reset before the first turn.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e.clearTurn()
	return e
}

// FromValues creates an engine over a fixed arrangement, all cards hidden.
// values must be a permutation of 1..len(values).
func FromValues(values []int, opts ...Option) (*Engine, error) {
	if err := checkPermutation(values); err != nil {
		return nil, err
	}
	e := New(opts...)
	e.cards = make([]Element, len(values))
	for i, v := range values {
		e.cards[i] = Element{Value: v}
	}
	return e, nil
}

// Reset deals a fresh uniformly random permutation of 1..n and clears the
// terminal flag, turn record and counters.
func (e *Engine) Reset(n int) error {
	if n < 1 {
		return fmt.Errorf("deck size must be at least 1, got %d", n)
	}
	e.cards = make([]Element, n)
	for i := range e.cards {
		e.cards[i] = Element{Value: i + 1}
	}
	e.rng.Shuffle(n, func(i, j int) {
		e.cards[i], e.cards[j] = e.cards[j], e.cards[i]
	})
	e.terminal = false
	e.turn = 0
	e.seq = 0
	e.clearTurn()
	e.logger.Debug("deck reset", "cards", n)
	return nil
}

// StartTurn clears the turn record. The scheduler calls it exactly once per
// turn, before the strategy decides.
func (e *Engine) StartTurn() {
	e.turn++
	e.clearTurn()
}

func (e *Engine) clearTurn() {
	e.rec = TurnRecord{ObservedIndex: -1}
}

// Observe returns the value of the card at index.
//
// Committed cards are always observable and do not affect the turn record.
// For an uncommitted card, Observe fails with ErrDoubleQuery if an
// uncommitted card was already observed this turn; otherwise it locks the
// turn on index and records whether the value may be committed.
func (e *Engine) Observe(index int) (int, error) {
	if err := e.checkIndex(index); err != nil {
		return 0, err
	}
	card := e.cards[index]
	if card.Committed {
		return card.Value, nil
	}
	if e.rec.Observed {
		return 0, e.protocolError(ErrCodeDoubleQuery, index,
			"card %d already observed this turn", e.rec.ObservedIndex)
	}

	e.rec = TurnRecord{
		Observed:       true,
		ObservedIndex:  index,
		CommitEligible: card.Value == e.Frontier()+1,
	}
	e.logger.Debug("card observed", "turn", e.turn, "index", index, "value", card.Value)
	e.emit(Event{Kind: EventObserve, Index: index, Target: -1, Value: card.Value})
	return card.Value, nil
}

// Commit flips the observed card. Committing the card with value N ends the
// game.
func (e *Engine) Commit() error {
	if !e.rec.Observed {
		return e.protocolError(ErrCodeNotObserved, -1, "commit without observe")
	}
	if !e.rec.CommitEligible {
		return e.protocolError(ErrCodeNotEligible, e.rec.ObservedIndex,
			"observed card is not frontier+1 (frontier=%d)", e.Frontier())
	}

	card := &e.cards[e.rec.ObservedIndex]
	card.Committed = true
	e.rec.CommitEligible = false
	if card.Value == len(e.cards) {
		e.terminal = true
	}
	e.logger.Debug("card committed", "turn", e.turn, "index", e.rec.ObservedIndex, "value", card.Value)
	e.emit(Event{Kind: EventCommit, Index: e.rec.ObservedIndex, Target: -1, Value: card.Value})
	return nil
}

// Relocate moves the observed card so that it ends up at target, with
// remove-then-insert semantics: target is interpreted against the sequence
// after removal. Valid targets are [0, N-1].
func (e *Engine) Relocate(target int) error {
	if !e.rec.Observed {
		return e.protocolError(ErrCodeNotObserved, -1, "relocate without observe")
	}
	if target < 0 || target >= len(e.cards) {
		return e.protocolError(ErrCodeIndexOutOfRange, target,
			"relocate target outside [0, %d]", len(e.cards)-1)
	}

	from := e.rec.ObservedIndex
	card := e.cards[from]
	if from < target {
		copy(e.cards[from:target], e.cards[from+1:target+1])
	} else {
		copy(e.cards[target+1:from+1], e.cards[target:from])
	}
	e.cards[target] = card

	e.rec.ObservedIndex = target
	e.rec.CommitEligible = false
	e.logger.Debug("card relocated", "turn", e.turn, "from", from, "to", target)
	e.emit(Event{Kind: EventRelocate, Index: from, Target: target, Value: card.Value})
	return nil
}

// IsCommitted reports whether the card at index is committed.
func (e *Engine) IsCommitted(index int) (bool, error) {
	if err := e.checkIndex(index); err != nil {
		return false, err
	}
	return e.cards[index].Committed, nil
}

// PeekValue returns the value of a committed card without touching the turn
// record. Uncommitted cards fail with ErrHiddenValue.
func (e *Engine) PeekValue(index int) (int, error) {
	if err := e.checkIndex(index); err != nil {
		return 0, err
	}
	if !e.cards[index].Committed {
		return 0, e.protocolError(ErrCodeHiddenValue, index, "card is not committed")
	}
	return e.cards[index].Value, nil
}

// Frontier returns the highest committed value, or 0 when nothing is
// committed. The next required value is Frontier()+1.
func (e *Engine) Frontier() int {
	frontier := 0
	for _, c := range e.cards {
		if c.Committed && c.Value > frontier {
			frontier = c.Value
		}
	}
	return frontier
}

// Size returns N.
func (e *Engine) Size() int {
	return len(e.cards)
}

// IsTerminal reports whether the card with value N has been committed.
func (e *Engine) IsTerminal() bool {
	return e.terminal
}

// Turn returns the number of turns started since the last Reset.
func (e *Engine) Turn() int {
	return e.turn
}

// TurnRecord returns a copy of the current turn record.
func (e *Engine) TurnRecord() TurnRecord {
	return e.rec
}

// Slots returns a copy of the public view of the sequence.
func (e *Engine) Slots() []Slot {
	slots := make([]Slot, len(e.cards))
	for i, c := range e.cards {
		if c.Committed {
			slots[i] = Slot{Value: c.Value, Committed: true}
		}
	}
	return slots
}

func (e *Engine) checkIndex(index int) error {
	if index < 0 || index >= len(e.cards) {
		return e.protocolError(ErrCodeIndexOutOfRange, index,
			"index outside [0, %d)", len(e.cards))
	}
	return nil
}

func (e *Engine) emit(ev Event) {
	e.seq++
	if e.recorder == nil {
		return
	}
	ev.Seq = e.seq
	ev.Turn = e.turn
	e.recorder.Record(ev)
}

func checkPermutation(values []int) error {
	if len(values) == 0 {
		return fmt.Errorf("deck must contain at least one card")
	}
	seen := make([]bool, len(values)+1)
	for i, v := range values {
		if v < 1 || v > len(values) {
			return fmt.Errorf("card %d has value %d outside [1, %d]", i, v, len(values))
		}
		if seen[v] {
			return fmt.Errorf("card %d repeats value %d", i, v)
		}
		seen[v] = true
	}
	return nil
}
