package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flipdeck/internal/config"
	"github.com/roach88/flipdeck/internal/sim"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	ConfigPath string
	Serial     bool

	Players  int
	Cards    int
	Games    int
	Strategy string
	Seed     int64
	Workers  int
	MaxTurns int
}

// SimulateResult is the JSON payload of the simulate command.
type SimulateResult struct {
	Config config.Config `json:"config"`
	Stats  sim.Stats     `json:"stats"`
}

// String renders the text form.
func (r SimulateResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d games, %d cards, %d player(s), strategy %s\n",
		r.Stats.Games, r.Config.Cards, r.Config.Players, r.Config.Strategy)
	fmt.Fprintf(&b, "Average rounds: %.2f\n", r.Stats.AvgTurns)
	fmt.Fprintf(&b, "Median rounds:  %.1f\n", r.Stats.MedianTurns)
	fmt.Fprintf(&b, "Min/Max rounds: %d/%d", r.Stats.MinTurns, r.Stats.MaxTurns)
	if r.Stats.Errors > 0 {
		fmt.Fprintf(&b, "\nFailed games:   %d", r.Stats.Errors)
	}
	return b.String()
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Average turn counts over many random deals",
		Long: `Play many games on freshly shuffled decks and report turn statistics.

Settings come from the built-in defaults, then an optional CUE config file,
then flags. Every game is seeded from --seed, so results are reproducible
and identical with or without --serial.

Exit codes:
  0 - All games finished
  1 - One or more games failed (protocol error or turn quota)
  2 - Command error (invalid config or flags)

Examples:
  flipdeck simulate --cards 52 --games 10000
  flipdeck simulate --config run.cue --strategy linear
  flipdeck simulate --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}

	def := config.Default()
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "CUE config file")
	cmd.Flags().BoolVar(&opts.Serial, "serial", false, "play games one after another")
	cmd.Flags().IntVar(&opts.Players, "players", def.Players, "number of players")
	cmd.Flags().IntVar(&opts.Cards, "cards", def.Cards, "deck size")
	cmd.Flags().IntVar(&opts.Games, "games", def.Games, "number of games")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", def.Strategy, "random|first|partition|linear")
	cmd.Flags().Int64Var(&opts.Seed, "seed", def.Seed, "master random seed")
	cmd.Flags().IntVar(&opts.Workers, "workers", def.Workers, "parallel workers (0 = one per CPU)")
	cmd.Flags().IntVar(&opts.MaxTurns, "max-turns", def.MaxTurns, "per-game turn quota (0 = default)")

	return cmd
}

// resolveConfig layers defaults, the config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command, opts *SimulateOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("players") {
		cfg.Players = opts.Players
	}
	if flags.Changed("cards") {
		cfg.Cards = opts.Cards
	}
	if flags.Changed("games") {
		cfg.Games = opts.Games
	}
	if flags.Changed("strategy") {
		cfg.Strategy = opts.Strategy
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.Seed
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.Workers
	}
	if flags.Changed("max-turns") {
		cfg.MaxTurns = opts.MaxTurns
	}
	return cfg, nil
}

func runSimulate(cmd *cobra.Command, opts *SimulateOptions) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeConfig, "invalid config", err)
	}
	simCfg := cfg.Sim(logger)
	if err := simCfg.Validate(); err != nil {
		return fail(f, ExitCommandError, ErrCodeConfig, "invalid settings", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Info("simulating", "games", cfg.Games, "cards", cfg.Cards, "strategy", cfg.Strategy, "seed", cfg.Seed)
	run := sim.RunBatchParallel
	if opts.Serial {
		run = sim.RunBatch
	}
	stats, runErr := run(ctx, simCfg)
	if runErr != nil && stats.Games == 0 {
		return fail(f, ExitCommandError, ErrCodeGeneric, "simulation failed", runErr)
	}
	if runErr != nil {
		logger.Warn("games failed", "count", stats.Errors, "first", runErr)
	}

	if err := f.Success(SimulateResult{Config: cfg, Stats: stats}); err != nil {
		return err
	}
	if stats.Errors > 0 {
		return WrapExitError(ExitFailure, fmt.Sprintf("%d game(s) failed", stats.Errors), runErr)
	}
	return nil
}
