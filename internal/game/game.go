// Package game schedules players' turns against a deck engine.
//
// Players act in seat order, one decision per turn, strictly sequentially.
// The game ends when the engine reports the terminal state, the turn quota
// is exhausted, a strategy breaks the protocol, or the context is cancelled.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/roach88/flipdeck/internal/deck"
	"github.com/roach88/flipdeck/internal/strategy"
)

// Player is one seat at the table.
type Player struct {
	Seat     int
	Strategy strategy.Strategy
}

// Result summarizes a finished game.
type Result struct {
	GameID   string `json:"game_id"`
	Cards    int    `json:"cards"`
	Players  int    `json:"players"`
	Strategy string `json:"strategy"`
	Turns    int    `json:"turns"`
	// Finisher is the seat that committed the last card.
	Finisher int `json:"finisher"`
}

// DefaultMaxTurns returns the default quota for an n-card game. It is far
// above what the O(N log N) strategies need.
func DefaultMaxTurns(n int) int {
	return 4*n*int(math.Ceil(math.Log2(float64(n+1)))) + 64
}

// Game runs one deck to completion.
type Game struct {
	id       string
	engine   *deck.Engine
	players  []Player
	current  int
	turns    int
	maxTurns int
	logger   *slog.Logger
}

// Option configures a Game.
type Option func(*Game)

// WithMaxTurns overrides the turn quota. Values <= 0 keep the default.
func WithMaxTurns(n int) Option {
	return func(g *Game) {
		if n > 0 {
			g.maxTurns = n
		}
	}
}

// WithID sets the game ID. Default: a UUIDv7.
func WithID(id string) Option {
	return func(g *Game) {
		g.id = id
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// New creates a game over an already dealt engine.
// Players are seated in the given order; their Seat fields are overwritten.
func New(e *deck.Engine, players []Player, opts ...Option) (*Game, error) {
	if e == nil || e.Size() == 0 {
		return nil, fmt.Errorf("game requires a dealt deck")
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("game requires at least one player")
	}
	seated := make([]Player, len(players))
	for i, p := range players {
		if p.Strategy == nil {
			return nil, fmt.Errorf("player %d has no strategy", i)
		}
		seated[i] = Player{Seat: i, Strategy: p.Strategy}
	}

	g := &Game{
		engine:   e,
		players:  seated,
		maxTurns: DefaultMaxTurns(e.Size()),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.id == "" {
		g.id = UUIDv7Generator{}.Generate()
	}
	return g, nil
}

// NewUniform seats n players that all use the same strategy.
func NewUniform(e *deck.Engine, s strategy.Strategy, n int, opts ...Option) (*Game, error) {
	players := make([]Player, n)
	for i := range players {
		players[i] = Player{Strategy: s}
	}
	return New(e, players, opts...)
}

// ID returns the game ID.
func (g *Game) ID() string { return g.id }

// Turns returns the number of turns played so far.
func (g *Game) Turns() int { return g.turns }

// Engine returns the underlying engine.
func (g *Game) Engine() *deck.Engine { return g.engine }

// CurrentSeat returns the seat that plays the next turn.
func (g *Game) CurrentSeat() int { return g.current }

// Step plays one turn. It reports whether the game is over.
func (g *Game) Step(ctx context.Context) (bool, error) {
	if g.engine.IsTerminal() {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if g.turns >= g.maxTurns {
		return false, &TurnLimitError{GameID: g.id, Turns: g.turns + 1, Limit: g.maxTurns}
	}

	p := g.players[g.current]
	g.engine.StartTurn()
	g.turns++
	if err := p.Strategy.Decide(g.engine); err != nil {
		return false, &DecisionError{
			GameID:   g.id,
			Turn:     g.turns,
			Seat:     p.Seat,
			Strategy: p.Strategy.Name(),
			Err:      err,
		}
	}

	if g.engine.IsTerminal() {
		g.logger.Debug("game finished", "game_id", g.id, "turns", g.turns, "seat", p.Seat)
		return true, nil
	}
	g.current = (g.current + 1) % len(g.players)
	return false, nil
}

// Run plays turns until the game ends.
func (g *Game) Run(ctx context.Context) (Result, error) {
	for {
		done, err := g.Step(ctx)
		if err != nil {
			return g.Result(), err
		}
		if done {
			return g.Result(), nil
		}
	}
}

// Result summarizes the game so far. Finisher is meaningful once the game
// is over.
func (g *Game) Result() Result {
	name := g.players[0].Strategy.Name()
	for _, p := range g.players[1:] {
		if p.Strategy.Name() != name {
			name = "mixed"
			break
		}
	}
	return Result{
		GameID:   g.id,
		Cards:    g.engine.Size(),
		Players:  len(g.players),
		Strategy: name,
		Turns:    g.turns,
		Finisher: g.current,
	}
}
