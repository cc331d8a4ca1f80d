// Package sim runs batches of games and aggregates turn counts.
//
// Every game gets its own engine, strategy and random source seeded from a
// per-game seed. The seeds are drawn from the master seed before any game
// runs, so the serial and parallel runners produce identical statistics.
package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/roach88/flipdeck/internal/deck"
	"github.com/roach88/flipdeck/internal/game"
	"github.com/roach88/flipdeck/internal/strategy"
)

// Config describes a batch.
type Config struct {
	Cards    int
	Players  int
	Games    int
	Strategy string
	Seed     int64
	// Workers is the parallel pool size. <= 0 means runtime.NumCPU().
	Workers int
	// MaxTurns is the per-game quota. <= 0 means game.DefaultMaxTurns.
	MaxTurns int
	Logger   *slog.Logger
}

// Validate checks the batch parameters.
func (c Config) Validate() error {
	if c.Cards < 1 {
		return fmt.Errorf("cards must be at least 1, got %d", c.Cards)
	}
	if c.Players < 1 {
		return fmt.Errorf("players must be at least 1, got %d", c.Players)
	}
	if c.Games < 1 {
		return fmt.Errorf("games must be at least 1, got %d", c.Games)
	}
	if _, err := strategy.ParseKind(c.Strategy); err != nil {
		return err
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Stats summarizes a batch. Failed games count only toward Errors.
type Stats struct {
	Games       int     `json:"games"`
	AvgTurns    float64 `json:"avg_turns"`
	MedianTurns float64 `json:"median_turns"`
	MinTurns    int     `json:"min_turns"`
	MaxTurns    int     `json:"max_turns"`
	Errors      int     `json:"errors"`
}

// gameJob is one game of a batch.
type gameJob struct {
	SimID int
	Seed  int64
}

// gameResult is the outcome of one game.
type gameResult struct {
	SimID int
	Turns int
	Err   error
}

// seeds draws one seed per game from the master seed.
func seeds(cfg Config) []int64 {
	rng := rand.New(rand.NewSource(cfg.Seed))
	out := make([]int64, cfg.Games)
	for i := range out {
		out[i] = rng.Int63()
	}
	return out
}

// RunBatch plays cfg.Games games one after another.
// The first game error (in game order) is returned alongside the stats.
func RunBatch(ctx context.Context, cfg Config) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}
	kind, _ := strategy.ParseKind(cfg.Strategy)
	logger := cfg.logger()

	results := make([]gameResult, 0, cfg.Games)
	for i, seed := range seeds(cfg) {
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
		results = append(results, runGame(ctx, cfg, kind, logger, gameJob{SimID: i, Seed: seed}))
	}
	return aggregate(results)
}

// runGame deals and plays a single game.
func runGame(ctx context.Context, cfg Config, kind strategy.Kind, logger *slog.Logger, job gameJob) gameResult {
	rng := rand.New(rand.NewSource(job.Seed))
	e := deck.New(deck.WithRand(rng), deck.WithLogger(logger))
	if err := e.Reset(cfg.Cards); err != nil {
		return gameResult{SimID: job.SimID, Err: err}
	}
	s, err := strategy.New(kind, rng)
	if err != nil {
		return gameResult{SimID: job.SimID, Err: err}
	}
	g, err := game.NewUniform(e, s, cfg.Players,
		game.WithID(fmt.Sprintf("sim-%d", job.SimID)),
		game.WithMaxTurns(cfg.MaxTurns),
		game.WithLogger(logger),
	)
	if err != nil {
		return gameResult{SimID: job.SimID, Err: err}
	}
	res, err := g.Run(ctx)
	return gameResult{SimID: job.SimID, Turns: res.Turns, Err: err}
}

// aggregate computes the batch statistics.
func aggregate(results []gameResult) (Stats, error) {
	sort.Slice(results, func(i, j int) bool { return results[i].SimID < results[j].SimID })

	stats := Stats{Games: len(results)}
	var firstErr error
	turns := make([]int, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			stats.Errors++
			if firstErr == nil {
				firstErr = fmt.Errorf("game %d: %w", r.SimID, r.Err)
			}
			continue
		}
		turns = append(turns, r.Turns)
	}
	if len(turns) == 0 {
		return stats, firstErr
	}

	sort.Ints(turns)
	sum := 0
	for _, t := range turns {
		sum += t
	}
	stats.AvgTurns = float64(sum) / float64(len(turns))
	stats.MinTurns = turns[0]
	stats.MaxTurns = turns[len(turns)-1]
	mid := len(turns) / 2
	if len(turns)%2 == 0 {
		stats.MedianTurns = float64(turns[mid-1]+turns[mid]) / 2
	} else {
		stats.MedianTurns = float64(turns[mid])
	}
	return stats, firstErr
}
