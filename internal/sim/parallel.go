package sim

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/roach88/flipdeck/internal/strategy"
)

// RunBatchParallel plays cfg.Games games on a pool of cfg.Workers workers.
// Results match RunBatch for the same Config.
func RunBatchParallel(ctx context.Context, cfg Config) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}
	kind, _ := strategy.ParseKind(cfg.Strategy)
	logger := cfg.logger()

	numWorkers := cfg.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > cfg.Games {
		numWorkers = cfg.Games
	}

	jobs := make(chan gameJob, cfg.Games)
	results := make(chan gameResult, cfg.Games)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go worker(ctx, &wg, jobs, results, cfg, kind, logger)
	}

	// all seeds are generated up front to match serial execution
	for i, seed := range seeds(cfg) {
		jobs <- gameJob{SimID: i, Seed: seed}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	all := make([]gameResult, 0, cfg.Games)
	for r := range results {
		all = append(all, r)
	}
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	return aggregate(all)
}

func worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan gameJob, results chan<- gameResult, cfg Config, kind strategy.Kind, logger *slog.Logger) {
	defer wg.Done()

	for job := range jobs {
		if err := ctx.Err(); err != nil {
			results <- gameResult{SimID: job.SimID, Err: err}
			continue
		}
		results <- runGame(ctx, cfg, kind, logger, job)
	}
}
