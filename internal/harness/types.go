package harness

import "github.com/roach88/flipdeck/internal/deck"

// TraceEvent is one recorded protocol step.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Turn  int    `json:"turn"`
	Kind  string `json:"kind"`
	Index int    `json:"index"`
	// Target is set for relocate events only.
	Target *int `json:"target,omitempty"`
	Value  int  `json:"value"`
}

func traceEvent(ev deck.Event) TraceEvent {
	te := TraceEvent{
		Seq:   ev.Seq,
		Turn:  ev.Turn,
		Kind:  string(ev.Kind),
		Index: ev.Index,
		Value: ev.Value,
	}
	if ev.Kind == deck.EventRelocate {
		target := ev.Target
		te.Target = &target
	}
	return te
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: the game finished without a protocol
	// error and every assertion held.
	Pass bool `json:"pass"`

	// Turns is the number of turns played.
	Turns int `json:"turns"`

	// Terminal reports whether every card ended committed.
	Terminal bool `json:"terminal"`

	// Frontier is the highest committed value when the run stopped.
	Frontier int `json:"frontier"`

	// Final is the sequence when the run stopped.
	Final deck.Snapshot `json:"final"`

	// Trace contains every protocol event in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains game and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEvent appends a protocol event to the trace.
func (r *Result) AddEvent(ev deck.Event) {
	r.Trace = append(r.Trace, traceEvent(ev))
}
