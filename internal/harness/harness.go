package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/roach88/flipdeck/internal/deck"
	"github.com/roach88/flipdeck/internal/game"
	"github.com/roach88/flipdeck/internal/strategy"
)

// Harness is the scenario execution engine.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// New creates a harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes a scenario and returns the result.
//
// A protocol violation or exhausted turn quota during play is a scenario
// failure recorded in Result.Errors, not a Go error. Errors are returned
// only when the scenario cannot be set up.
//
// Execution flow:
//  1. Deal the scenario's deck into a fresh engine with an event recorder
//  2. Seat the players with the scenario's strategy
//  3. Play to completion, quota or first error
//  4. Evaluate assertions against the final state and trace
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()

	e, err := deck.FromValues(scenario.Deck,
		deck.WithLogger(h.logger),
		deck.WithRecorder(deck.RecorderFunc(result.AddEvent)),
	)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	kind, err := strategy.ParseKind(scenario.Strategy)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	s, err := strategy.New(kind, rand.New(rand.NewSource(scenario.Seed)))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	players := scenario.Players
	if players == 0 {
		players = 1
	}
	g, err := game.NewUniform(e, s, players,
		game.WithID("scenario-"+scenario.Name),
		game.WithMaxTurns(scenario.MaxTurns),
		game.WithLogger(h.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	h.logger.Debug("running scenario", "name", scenario.Name, "strategy", s.Name(), "cards", e.Size())
	res, runErr := g.Run(ctx)
	if runErr != nil {
		if ctx.Err() != nil {
			return nil, runErr
		}
		result.AddError(runErr.Error())
	}

	result.Turns = res.Turns
	result.Terminal = e.IsTerminal()
	result.Frontier = e.Frontier()
	result.Final = e.Snapshot()

	for _, err := range evaluateAssertions(result, scenario.Assertions) {
		result.AddError(err.Error())
	}
	return result, nil
}
