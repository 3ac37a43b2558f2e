// Package models defines domain entities shared by the listsync reconciliation engine, its
// control server and run history persistence.
//
// The package contains two categories of types:
//
// 1. Source store values: lightweight structs built from note store responses
//   - [SourceItem] : a single checklist entry
//   - [SourceList] : a titled checklist with its entries
//
// 2. Reconciliation results: values produced by a sync cycle and persisted as history
//   - [SyncPair] : a (source list, target list) mapping
//   - [PairResult] : the outcome of one pair within a cycle
//   - [RunResult] : one complete cycle across every configured pair
//
// [RunResult] implements [Model] so that repositories can treat it like any other persistent entity.
package models
