package game

import (
	"errors"
	"fmt"
)

// TurnLimitError is returned when a game exceeds its turn quota.
// A correct divide-and-conquer strategy never hits the default quota; a
// quadratic baseline on a large deck may.
type TurnLimitError struct {
	GameID string
	Turns  int
	Limit  int
}

// Error implements the error interface.
func (e *TurnLimitError) Error() string {
	return fmt.Sprintf("game %s exceeded turn quota: %d turns > %d limit", e.GameID, e.Turns, e.Limit)
}

// IsTurnLimitError reports whether err is (or wraps) a *TurnLimitError.
func IsTurnLimitError(err error) bool {
	var te *TurnLimitError
	return errors.As(err, &te)
}

// DecisionError wraps a strategy failure with the turn it happened on.
type DecisionError struct {
	GameID   string
	Turn     int
	Seat     int
	Strategy string
	Err      error
}

// Error implements the error interface.
func (e *DecisionError) Error() string {
	return fmt.Sprintf("game %s turn %d (seat %d, %s): %v", e.GameID, e.Turn, e.Seat, e.Strategy, e.Err)
}

// Unwrap returns the strategy error.
func (e *DecisionError) Unwrap() error {
	return e.Err
}
