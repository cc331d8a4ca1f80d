package cli

import (
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/roach88/flipdeck/internal/deck"
)

// NewResumeCommand creates the resume command.
func NewResumeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GameOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resume <snapshot.json>",
		Short: "Continue a saved game",
		Long: `Restore a snapshot written by play --save and keep playing.

The snapshot holds the card values, which cards are flipped and the
frontier. A restored game behaves exactly like the original would have
from the same point on.

Exit codes:
  0 - Game finished (or paused with --stop-after)
  1 - Game aborted (protocol error or turn quota)
  2 - Command error (unreadable or invalid snapshot)

Examples:
  flipdeck resume game.json
  flipdeck resume game.json --strategy linear --players 2 -v`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResume(cmd, opts, args[0])
		},
	}

	addGameFlags(cmd, opts)
	return cmd
}

func runResume(cmd *cobra.Command, opts *GameOptions, path string) error {
	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	snap, err := readSnapshot(path)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeSnapshot, "cannot read snapshot", err)
	}
	e, err := deck.Restore(snap, deck.WithLogger(logger))
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeSnapshot, "invalid snapshot", err)
	}
	id, _ := snap.ID()
	logger.Info("snapshot restored", "path", path, "snapshot_id", id, "frontier", snap.Frontier)

	return playGame(cmd, f, logger, e, rand.New(rand.NewSource(opts.Seed)), opts)
}
