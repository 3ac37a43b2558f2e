// Package repositories implements SQLite persistence for reconciliation history.
//
// Key Implementations:
//   - [RunRepository] : one row per cycle in sync_runs plus one row per list pair in sync_pair_results
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
