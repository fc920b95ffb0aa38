package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/routeops/observe"
	"github.com/jonwraymond/routeops/store"
)

// DefaultStaleTime is the freshness threshold used when none is configured.
const DefaultStaleTime = 5 * time.Minute

// Config configures a Manager.
type Config struct {
	// Strategy selects the storage substrate. Fixed at construction;
	// changing it requires a new Manager.
	Strategy store.Strategy

	// StaleTime is the duration after which an entry reads as stale.
	// Zero applies DefaultStaleTime; negative is invalid.
	StaleTime time.Duration

	// Dir is the base directory for the file strategy.
	Dir string

	// Namespace scopes the file strategy to this manager's own
	// subdirectory, typically the route name. Managers with different
	// namespaces over the same Dir never touch each other's entries.
	Namespace string

	// Logger receives storage degradation reports. Defaults to a no-op.
	Logger observe.Logger
}

// State is the read view of a cache entry. Fresh is derived at read time
// and never stored.
type State struct {
	Data      json.RawMessage
	Timestamp time.Time
	Fresh     bool
}

// RefetchFunc re-executes the fetch that originally produced the entry for
// key and writes the result back through the Manager.
type RefetchFunc func(ctx context.Context, key string) error

// Manager is the freshness-aware front for one route's cache entries.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: Get never fails; storage write failures surface from Set only
//     for programming errors, never for substrate degradation.
type Manager struct {
	mu        sync.RWMutex
	st        store.Store
	strategy  store.Strategy
	storeOpts store.Options
	staleTime time.Duration
	logger    observe.Logger
}

// New creates a Manager with a fresh store of the configured strategy.
func New(cfg Config) (*Manager, error) {
	if cfg.StaleTime < 0 {
		return nil, ErrInvalidStaleTime
	}
	staleTime := cfg.StaleTime
	if staleTime == 0 {
		staleTime = DefaultStaleTime
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}

	opts := store.Options{Dir: cfg.Dir, Namespace: cfg.Namespace, Logger: logger}
	st, err := store.New(cfg.Strategy, opts)
	if err != nil {
		return nil, err
	}

	return &Manager{
		st:        st,
		strategy:  cfg.Strategy,
		storeOpts: opts,
		staleTime: staleTime,
		logger:    logger,
	}, nil
}

// StaleTime returns the configured freshness threshold.
func (m *Manager) StaleTime() time.Duration { return m.staleTime }

// Strategy returns the storage strategy fixed at construction.
func (m *Manager) Strategy() store.Strategy { return m.strategy }

func (m *Manager) backend() store.Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st
}

// Set wraps data with the current instant and writes it through, always a
// full overwrite of any existing entry.
func (m *Manager) Set(ctx context.Context, key string, data json.RawMessage) error {
	entry := store.Entry{
		Data:      append(json.RawMessage(nil), data...),
		Timestamp: time.Now(),
	}
	return m.backend().Set(ctx, key, entry)
}

// Get reads the entry for key and classifies its freshness at this instant.
// Absent entries report (zero, false). Get never fails. The returned Data is
// the caller's to keep; mutating it cannot corrupt the stored entry.
func (m *Manager) Get(ctx context.Context, key string) (State, bool) {
	e, ok := m.backend().Get(ctx, key)
	if !ok {
		return State{}, false
	}
	return State{
		Data:      append(json.RawMessage(nil), e.Data...),
		Timestamp: e.Timestamp,
		Fresh:     time.Since(e.Timestamp) <= m.staleTime,
	}, true
}

// Invalidate removes the entry for key so the next Get reports absent and
// forces a refetch. Rewriting the entry in place would not change its
// staleness outcome under read-time freshness, so removal is the one
// invalidation that actually bites.
func (m *Manager) Invalidate(ctx context.Context, key string) {
	_ = m.backend().Delete(ctx, key)
}

// InvalidateAndRefetch runs in two phases: first every entry's timestamp is
// refreshed to now, then the refetch callback is awaited sequentially for
// each key. The first phase completes fully before the second begins. A
// refetch failure aborts the remaining refetches and is returned; entries
// already refetched keep their new data.
func (m *Manager) InvalidateAndRefetch(ctx context.Context, refetch RefetchFunc) error {
	if refetch == nil {
		return ErrNilRefetch
	}

	st := m.backend()

	var keys []string
	err := st.ForEach(ctx, func(key string, e store.Entry) {
		keys = append(keys, key)
		_ = st.Set(ctx, key, store.Entry{Data: e.Data, Timestamp: time.Now()})
	})
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := refetch(ctx, key); err != nil {
			return fmt.Errorf("cache: refetch %q: %w", key, err)
		}
	}
	return nil
}

// RefetchStale awaits the refetch callback once for every entry that is
// stale at call time. Fresh entries are untouched. Used for focus-driven
// revalidation. The first failure aborts the remaining refetches.
func (m *Manager) RefetchStale(ctx context.Context, refetch RefetchFunc) error {
	if refetch == nil {
		return ErrNilRefetch
	}

	var stale []string
	err := m.backend().ForEach(ctx, func(key string, e store.Entry) {
		if time.Since(e.Timestamp) > m.staleTime {
			stale = append(stale, key)
		}
	})
	if err != nil {
		return err
	}

	for _, key := range stale {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := refetch(ctx, key); err != nil {
			return fmt.Errorf("cache: refetch %q: %w", key, err)
		}
	}
	return nil
}

// Keys returns the keys currently present, in unspecified order.
func (m *Manager) Keys(ctx context.Context) []string {
	var keys []string
	_ = m.backend().ForEach(ctx, func(key string, _ store.Entry) {
		keys = append(keys, key)
	})
	return keys
}

// Clear discards the underlying store and replaces it with a fresh empty
// instance of the same strategy. For the file strategy this drops every
// entry under the manager's own namespace, including entries written by
// other processes after construction, and nothing else.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.st.Clear(ctx); err != nil {
		return err
	}
	fresh, err := store.New(m.strategy, m.storeOpts)
	if err != nil {
		return err
	}
	m.st = fresh
	return nil
}
