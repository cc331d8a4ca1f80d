package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			if ev.Target != nil {
				fmt.Fprintf(&buf, "  [%d] turn %d %s %d -> %d (value %d)\n", ev.Seq, ev.Turn, ev.Kind, ev.Index, *ev.Target, ev.Value)
				continue
			}
			fmt.Fprintf(&buf, "  [%d] turn %d %s %d (value %d)\n", ev.Seq, ev.Turn, ev.Kind, ev.Index, ev.Value)
		}
	}
	return buf.String()
}

// evaluateAssertions checks every assertion and returns the failures.
func evaluateAssertions(r *Result, assertions []Assertion) []error {
	var errs []error
	for _, a := range assertions {
		if err := evaluateAssertion(r, a); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func evaluateAssertion(r *Result, a Assertion) error {
	switch a.Type {
	case AssertTerminal:
		return assertTerminal(r)
	case AssertTurnsAtMost:
		return assertTurnsAtMost(r, a)
	case AssertFinalFrontier:
		return assertFinalFrontier(r, a)
	case AssertTraceCount:
		return assertTraceCount(r.Trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(r.Trace, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertTerminal(r *Result) error {
	if r.Terminal {
		return nil
	}
	return &AssertionError{
		Type:     AssertTerminal,
		Expected: "every card committed",
		Actual:   fmt.Sprintf("frontier %d of %d", r.Frontier, len(r.Final.Values)),
	}
}

func assertTurnsAtMost(r *Result, a Assertion) error {
	if r.Turns <= a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTurnsAtMost,
		Expected: fmt.Sprintf("at most %d turns", a.Count),
		Actual:   fmt.Sprintf("%d turns", r.Turns),
	}
}

func assertFinalFrontier(r *Result, a Assertion) error {
	if r.Frontier == a.Value {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalFrontier,
		Expected: fmt.Sprintf("frontier %d", a.Value),
		Actual:   fmt.Sprintf("frontier %d", r.Frontier),
	}
}

// assertTraceCount checks that exactly Count events of Kind were recorded.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Kind == a.Kind {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d %s events", a.Count, a.Kind),
		Actual:   fmt.Sprintf("%d %s events", count, a.Kind),
		Trace:    trace,
	}
}

// assertTraceOrder checks that Kinds occur in the trace in order.
// Intervening events are allowed.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, ev := range trace {
		if next == len(a.Kinds) {
			break
		}
		if ev.Kind == a.Kinds[next] {
			next++
		}
	}
	if next == len(a.Kinds) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("kinds in order %v", a.Kinds),
		Actual:   fmt.Sprintf("matched %d of %d, stopped at %q", next, len(a.Kinds), a.Kinds[next]),
		Trace:    trace,
	}
}
