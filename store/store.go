package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/routeops/observe"
)

// Sentinel errors for store construction.
var (
	ErrUnknownStrategy = errors.New("store: unknown strategy")
)

// Entry is one cached value with its creation instant. Entries are replaced
// wholesale on every write; they are never partially mutated.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Store is the contract for cache entry storage.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Get must never error; it reports absence with ok=false.
// - Iteration: ForEach order is unspecified.
type Store interface {
	// Get retrieves an entry. Returns (zero, false) when absent.
	Get(ctx context.Context, key string) (Entry, bool)

	// Set stores an entry, overwriting any existing one.
	Set(ctx context.Context, key string, e Entry) error

	// Delete removes an entry. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by this store.
	Clear(ctx context.Context) error

	// ForEach visits every entry. Entries written concurrently may or may
	// not be visited.
	ForEach(ctx context.Context, fn func(key string, e Entry)) error
}

// Strategy selects a storage substrate.
type Strategy string

const (
	// StrategyMemory keeps entries in an in-process map.
	StrategyMemory Strategy = "memory"

	// StrategyFile persists entries as JSON files under a namespaced
	// directory.
	StrategyFile Strategy = "file"

	// StrategyNone disables caching. The factory rejects it; callers
	// decide not to construct a store at all.
	StrategyNone Strategy = "none"
)

// Options configures store construction.
type Options struct {
	// Dir is the base directory for the file strategy. Defaults to the
	// user cache directory.
	Dir string

	// Namespace scopes the file strategy to its own subdirectory so that
	// stores sharing a base directory never see or clear each other's
	// entries. Empty means the shared root namespace.
	Namespace string

	// Logger receives degraded-mode and write-failure reports. Defaults
	// to a no-op logger.
	Logger observe.Logger
}

// New constructs a Store for the given strategy.
func New(strategy Strategy, opts Options) (Store, error) {
	switch strategy {
	case StrategyMemory:
		return NewMemoryStore(), nil
	case StrategyFile:
		return NewFileStore(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}
