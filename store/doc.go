// Package store provides the key/value entry stores backing the response
// cache.
//
// Two interchangeable substrates are provided: a transient in-process map
// and a persistent file-backed store kept under a namespaced directory. The
// file substrate degrades to a no-op when its directory is unavailable and
// treats corrupt or foreign entries as absent.
package store
