package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/flipdeck/internal/canonical"
)

// TraceSnapshot captures the complete trace for a scenario execution.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Strategy     string       `json:"strategy"`
	Trace        []TraceEvent `json:"trace"`
	Turns        int          `json:"turns"`
}

// toCanonicalMap converts a TraceSnapshot to the value types
// canonical.Marshal accepts.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		eventMap := map[string]any{
			"seq":   ev.Seq,
			"turn":  ev.Turn,
			"kind":  ev.Kind,
			"index": ev.Index,
			"value": ev.Value,
		}
		if ev.Target != nil {
			eventMap["target"] = *ev.Target
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"strategy":      s.Strategy,
		"trace":         traceList,
		"turns":         s.Turns,
	}
}

// GoldenBytes returns the canonical JSON trace of a scenario result, the
// content of its golden file.
func GoldenBytes(scenario *Scenario, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Strategy:     scenario.Strategy,
		Trace:        result.Trace,
		Turns:        result.Turns,
	}
	return canonical.Marshal(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden
// file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check assertions; a trace mismatch
// fails the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	traceJSON, err := GoldenBytes(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)
	return result, nil
}
