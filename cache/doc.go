// Package cache provides the freshness-aware read/write front over a
// storage backend.
//
// One Manager owns the entries of one logical route. Freshness is computed
// at read time against a stale-time threshold, never stored, so two reads
// of the same entry at different times may classify it differently without
// any write occurring. Key derivation is deterministic across map iteration
// order.
package cache
