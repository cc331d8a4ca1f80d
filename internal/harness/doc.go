// Package harness runs deck scenarios and checks their outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: four_card_partition
//	description: "Partition search on the four-card walkthrough"
//	strategy: partition
//	deck: [3, 1, 4, 2]
//	players: 1
//	assertions:
//	  - type: terminal
//	  - type: turns_at_most
//	    count: 9
//	  - type: trace_count
//	    kind: commit
//	    count: 4
//	  - type: trace_order
//	    kinds: [observe, commit, relocate]
//
// # Assertion Types
//
//   - terminal: the game reached the all-committed state
//   - turns_at_most: the game took at most count turns
//   - final_frontier: the frontier equals value when the game ends
//   - trace_count: exactly count events of the given kind were recorded
//   - trace_order: kinds appear in the trace in order, not necessarily
//     adjacent
//
// # Deterministic Testing
//
// Every run starts from the scenario's fixed deck, uses a random source
// seeded from the scenario (seed, default 1) and a fixed game ID, so traces
// are identical across runs and can be compared against golden files.
package harness
