package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/flipdeck/internal/deck"
	"github.com/roach88/flipdeck/internal/strategy"
)

// Scenario defines a conformance scenario: a fixed deck, the strategy that
// plays it, and assertions on the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Strategy is a strategy name (random, first, partition, linear).
	Strategy string `yaml:"strategy"`

	// Deck is the initial arrangement, a permutation of 1..N.
	Deck []int `yaml:"deck"`

	// Players is the number of seats. Default 1.
	Players int `yaml:"players,omitempty"`

	// Seed feeds the random strategy. Default 1.
	Seed int64 `yaml:"seed,omitempty"`

	// MaxTurns overrides the game's turn quota when positive.
	MaxTurns int `yaml:"max_turns,omitempty"`

	// Assertions validate the final state and trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Kind is the event kind (trace_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number (trace_count, turns_at_most).
	Count int `yaml:"count,omitempty"`

	// Value is the expected frontier (final_frontier).
	Value int `yaml:"value,omitempty"`

	// Kinds is the expected event order (trace_order).
	Kinds []string `yaml:"kinds,omitempty"`
}

// Assertion type constants.
const (
	AssertTerminal      = "terminal"
	AssertTurnsAtMost   = "turns_at_most"
	AssertFinalFrontier = "final_frontier"
	AssertTraceCount    = "trace_count"
	AssertTraceOrder    = "trace_order"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Players == 0 {
		scenario.Players = 1
	}
	if scenario.Seed == 0 {
		scenario.Seed = 1
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml file in dir, sorted by name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, err := strategy.ParseKind(s.Strategy); err != nil {
		return err
	}
	if len(s.Deck) == 0 {
		return fmt.Errorf("deck is required and must be non-empty")
	}
	// reuse the engine's own permutation check
	if _, err := deck.FromValues(s.Deck); err != nil {
		return fmt.Errorf("deck: %w", err)
	}
	if s.Players < 1 {
		return fmt.Errorf("players must be at least 1")
	}
	if s.MaxTurns < 0 {
		return fmt.Errorf("max_turns must be non-negative")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, len(s.Deck)); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, n int) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTerminal:
	case AssertTurnsAtMost:
		if a.Count < 1 {
			return fmt.Errorf("assertions[%d]: count must be positive for turns_at_most", index)
		}
	case AssertFinalFrontier:
		if a.Value < 0 || a.Value > n {
			return fmt.Errorf("assertions[%d]: value must be in [0, %d] for final_frontier", index, n)
		}
	case AssertTraceCount:
		if !validKind(a.Kind) {
			return fmt.Errorf("assertions[%d]: unknown event kind %q for trace_count", index, a.Kind)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertTraceOrder:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for trace_order", index)
		}
		for _, k := range a.Kinds {
			if !validKind(k) {
				return fmt.Errorf("assertions[%d]: unknown event kind %q for trace_order", index, k)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func validKind(kind string) bool {
	switch deck.EventKind(kind) {
	case deck.EventObserve, deck.EventCommit, deck.EventRelocate:
		return true
	}
	return false
}
