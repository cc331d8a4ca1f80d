// Package config loads run configuration from CUE files.
//
// The schema lives in schema.cue and is embedded in the binary. A config
// file holds plain top-level fields; anything it omits takes the schema
// default, and fields the schema does not declare are rejected.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/flipdeck/internal/sim"
)

//go:embed schema.cue
var schemaSource string

// Config is a decoded run configuration.
type Config struct {
	Players  int    `json:"players"`
	Cards    int    `json:"cards"`
	Games    int    `json:"games"`
	Strategy string `json:"strategy"`
	Seed     int64  `json:"seed"`
	Workers  int    `json:"workers"`
	MaxTurns int    `json:"max_turns"`
}

// Error codes.
const (
	ErrCodeRead     = "C001" // file could not be read
	ErrCodeSyntax   = "C002" // CUE did not compile
	ErrCodeSchema   = "C003" // value violates #Config
	ErrCodeDecode   = "C004" // value could not be decoded
	ErrCodeInternal = "C005" // embedded schema is broken
)

// Error is a configuration error with the CUE position when one is known.
type Error struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code string, err error) *Error {
	ce := &Error{Code: code, Message: err.Error()}
	if pos := cueerrors.Positions(err); len(pos) > 0 {
		ce.Pos = pos[0]
	}
	return ce
}

// Default returns the schema defaults.
func Default() Config {
	cfg, err := LoadBytes("default.cue", nil)
	if err != nil {
		panic(fmt.Sprintf("embedded config schema: %v", err))
	}
	return cfg
}

// Load reads and validates a CUE config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Code: ErrCodeRead, Message: err.Error()}
	}
	return LoadBytes(path, data)
}

// LoadBytes validates CUE source against #Config. filename is used in
// error positions only.
func LoadBytes(filename string, data []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, newError(ErrCodeInternal, err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return Config{}, &Error{Code: ErrCodeInternal, Message: "#Config not found in schema"}
	}

	file := ctx.CompileBytes(data, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return Config{}, newError(ErrCodeSyntax, err)
	}

	iter, err := file.Fields()
	if err != nil {
		return Config{}, newError(ErrCodeSchema, err)
	}
	for iter.Next() {
		if !def.LookupPath(cue.MakePath(iter.Selector())).Exists() {
			return Config{}, &Error{
				Code:    ErrCodeSchema,
				Message: fmt.Sprintf("field not allowed: %s", iter.Selector()),
				Pos:     iter.Value().Pos(),
			}
		}
	}

	value := def.Unify(file)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return Config{}, newError(ErrCodeSchema, err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return Config{}, newError(ErrCodeDecode, err)
	}
	return cfg, nil
}

// Sim converts the configuration to batch parameters.
func (c Config) Sim(logger *slog.Logger) sim.Config {
	return sim.Config{
		Cards:    c.Cards,
		Players:  c.Players,
		Games:    c.Games,
		Strategy: c.Strategy,
		Seed:     c.Seed,
		Workers:  c.Workers,
		MaxTurns: c.MaxTurns,
		Logger:   logger,
	}
}
