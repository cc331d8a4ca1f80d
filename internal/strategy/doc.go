// Package strategy implements the player policies for the flip game.
//
// Every strategy makes one decision per turn through Decide: at most one
// observe of an uncommitted card, an optional commit and usually one
// relocate. Strategies hold no card state between turns; everything they
// need is read back from the engine.
//
// Two strategies are worth studying:
//
//   - Partition (PartitionSearch) recursively splits the unresolved cards
//     around committed "divider" cards, using relocation to move large
//     values right of the divider and small values left of it.
//   - Linear (LinearPartitionSearch) reaches the same arrangement in a single
//     scan per turn, inferring from positions alone whether the first
//     committed card after the unresolved prefix is a valid divider.
//
// Both finish in O(N log N) turns. Random and First are baselines.
package strategy
