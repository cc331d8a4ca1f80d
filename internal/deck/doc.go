// Package deck implements the sequence engine for the flip game.
//
// A game is a hidden permutation of 1..N laid out as an ordered sequence of
// cards. The engine owns that sequence and enforces the per-turn protocol:
//
//  1. StartTurn clears the turn record.
//  2. Observe reveals one uncommitted card. Observing committed cards is
//     always free and does not touch the turn record.
//  3. Commit flips the observed card, legal only when its value is
//     Frontier()+1 at the time it was observed.
//  4. Relocate moves the observed card to any position (remove, then insert).
//
// The engine is the sole arbiter of legality. Violations return a
// *ProtocolError whose Code names the broken rule; callers match them with
// errors.Is against ErrDoubleQuery, ErrNotObserved, ErrNotEligible,
// ErrIndexOutOfRange and ErrHiddenValue.
//
// Thread-safety: an Engine is not safe for concurrent use. Turns are strictly
// sequential and a single caller drives each game.
package deck
