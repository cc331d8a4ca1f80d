package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flipdeck/internal/config"
	"github.com/roach88/flipdeck/internal/deck"
	"github.com/roach88/flipdeck/internal/game"
	"github.com/roach88/flipdeck/internal/strategy"
)

// GameOptions holds the flags shared by play and resume.
type GameOptions struct {
	*RootOptions
	Strategy  string
	Players   int
	Seed      int64
	MaxTurns  int
	StopAfter int    // pause after this many turns (0 = play to the end)
	Save      string // write the final snapshot here

	// IDs overrides the game ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs game.IDGenerator
}

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	GameOptions
	Deck  string
	Cards int
}

// PlayResult is the JSON payload of play and resume.
type PlayResult struct {
	game.Result
	Terminal   bool          `json:"terminal"`
	Snapshot   deck.Snapshot `json:"snapshot"`
	SnapshotID string        `json:"snapshot_id"`
}

// String renders the text form.
func (r PlayResult) String() string {
	if r.Terminal {
		return fmt.Sprintf("game %s: %d cards sorted in %d turns by %d player(s) using %s (seat %d flipped the last card)",
			r.GameID, r.Cards, r.Turns, r.Players, r.Strategy, r.Finisher)
	}
	return fmt.Sprintf("game %s: paused after %d turns with %d of %d cards flipped (snapshot %s)",
		r.GameID, r.Turns, r.Snapshot.Frontier, r.Cards, shortID(r.SnapshotID))
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{GameOptions: GameOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a single game",
		Long: `Play one game, on a fixed arrangement or a shuffled deck.

With --verbose every turn's table is printed: flipped cards show their
value, face-down cards an X, and the card observed that turn its value in
brackets.

Exit codes:
  0 - Game finished (or paused with --stop-after)
  1 - Game aborted (protocol error or turn quota)
  2 - Command error (bad deck, bad flags)

Examples:
  flipdeck play --deck 3,1,4,2 --strategy partition -v
  flipdeck play --cards 20 --strategy linear --players 3
  flipdeck play --cards 20 --stop-after 10 --save game.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts)
		},
	}

	def := config.Default()
	cmd.Flags().StringVar(&opts.Deck, "deck", "", "fixed arrangement, e.g. 3,1,4,2")
	cmd.Flags().IntVar(&opts.Cards, "cards", def.Cards, "deck size when shuffling")
	addGameFlags(cmd, &opts.GameOptions)

	return cmd
}

func addGameFlags(cmd *cobra.Command, opts *GameOptions) {
	def := config.Default()
	cmd.Flags().StringVar(&opts.Strategy, "strategy", def.Strategy, "random|first|partition|linear")
	cmd.Flags().IntVar(&opts.Players, "players", def.Players, "number of players")
	cmd.Flags().Int64Var(&opts.Seed, "seed", def.Seed, "random seed for shuffling and the random strategy")
	cmd.Flags().IntVar(&opts.MaxTurns, "max-turns", def.MaxTurns, "turn quota (0 = default)")
	cmd.Flags().IntVar(&opts.StopAfter, "stop-after", 0, "pause after this many turns")
	cmd.Flags().StringVar(&opts.Save, "save", "", "write the final snapshot to this file")
}

// parseDeck parses a comma separated arrangement.
func parseDeck(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid card %q", p)
		}
		values = append(values, v)
	}
	return values, nil
}

func runPlay(cmd *cobra.Command, opts *PlayOptions) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	rng := rand.New(rand.NewSource(opts.Seed))

	var e *deck.Engine
	if opts.Deck != "" {
		values, err := parseDeck(opts.Deck)
		if err != nil {
			return fail(f, ExitCommandError, ErrCodeBadDeck, "invalid --deck", err)
		}
		e, err = deck.FromValues(values, deck.WithLogger(logger))
		if err != nil {
			return fail(f, ExitCommandError, ErrCodeBadDeck, "invalid --deck", err)
		}
	} else {
		e = deck.New(deck.WithRand(rng), deck.WithLogger(logger))
		if err := e.Reset(opts.Cards); err != nil {
			return fail(f, ExitCommandError, ErrCodeBadDeck, "invalid --cards", err)
		}
	}

	return playGame(cmd, f, logger, e, rng, &opts.GameOptions)
}

// playGame seats the players and runs the game, rendering each turn when
// verbose. It is shared by play and resume.
func playGame(cmd *cobra.Command, f *OutputFormatter, logger *slog.Logger, e *deck.Engine, rng *rand.Rand, opts *GameOptions) error {
	kind, err := strategy.ParseKind(opts.Strategy)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, "invalid --strategy", err)
	}
	s, err := strategy.New(kind, rng)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, "invalid --strategy", err)
	}

	ids := opts.IDs
	if ids == nil {
		ids = game.UUIDv7Generator{}
	}
	g, err := game.NewUniform(e, s, opts.Players,
		game.WithID(ids.Generate()),
		game.WithMaxTurns(opts.MaxTurns),
		game.WithLogger(logger),
	)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeGeneric, "cannot start game", err)
	}

	// the engine never reveals a hidden card, so remember what was observed
	observed := 0
	e.SetRecorder(deck.RecorderFunc(func(ev deck.Event) {
		if ev.Kind == deck.EventObserve {
			observed = ev.Value
		}
	}))

	tables := f.Writer
	if f.Format == "json" {
		tables = f.GetErrWriter()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Info("game started", "game_id", g.ID(), "cards", e.Size(), "strategy", s.Name(), "players", opts.Players)
	var runErr error
	for opts.StopAfter <= 0 || g.Turns() < opts.StopAfter {
		seat := g.CurrentSeat()
		before := g.Turns()
		done, err := g.Step(ctx)
		if err != nil {
			runErr = err
			break
		}
		if opts.Verbose && g.Turns() > before {
			fmt.Fprintln(tables, RenderTable(tableView(e, seat, observed)))
		}
		if done {
			break
		}
	}

	res := PlayResult{
		Result:   g.Result(),
		Terminal: e.IsTerminal(),
		Snapshot: e.Snapshot(),
	}
	res.SnapshotID, err = res.Snapshot.ID()
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeSnapshot, "cannot hash snapshot", err)
	}

	if opts.Save != "" {
		if err := writeSnapshot(opts.Save, res.Snapshot); err != nil {
			return fail(f, ExitCommandError, ErrCodeWriteFailed, "cannot save snapshot", err)
		}
		logger.Info("snapshot saved", "path", opts.Save, "snapshot_id", res.SnapshotID)
	}

	if runErr != nil {
		return fail(f, ExitFailure, ErrCodeGameFailed, fmt.Sprintf("game %s aborted after %d turns", g.ID(), g.Turns()), runErr)
	}
	return f.Success(res)
}

func writeSnapshot(path string, s deck.Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func readSnapshot(path string) (deck.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return deck.Snapshot{}, err
	}
	defer file.Close()
	return decodeSnapshot(file)
}

func decodeSnapshot(r io.Reader) (deck.Snapshot, error) {
	var s deck.Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return deck.Snapshot{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return s, nil
}
