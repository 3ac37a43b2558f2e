// Package engine implements the reconciliation cycle that mirrors unchecked checklist items from the
// source store into task lists in the target store.
//
// # Components
//
//   - [SourceReader] : reads and mutates source checklists by title
//   - [Target] : resolves target lists, snapshots their open tasks and adds new ones
//   - [Reconciler] : runs every configured pair in order and records the result
//   - [Scheduler] : runs the cycle immediately and then on a fixed interval
//
// # Target shapes
//
// Target stores return lists and tasks either as decoded JSON (maps and slices) or as typed objects.
// Titles, identifiers and completion flags are read through ordered extractor chains that try map keys
// and accessor interfaces in priority order, so the engine never needs to know which shape it has.
//
// # Idempotency
//
// Before writing, the cycle collects the normalized titles of the list's open tasks. An item is written
// only when its normalized text is absent, and each successful write is added to that set at once, so
// repeated or near-duplicate items within one run produce a single task.
//
// Operations emit [ProgressUpdate] values on an optional channel without ever blocking.
package engine
