package routeops

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonwraymond/routeops/cache"
	"github.com/jonwraymond/routeops/observe"
	"github.com/jonwraymond/routeops/resilience"
	"github.com/jonwraymond/routeops/route"
	"github.com/jonwraymond/routeops/store"
)

// CacheConfig configures the client's response cache. One manager is created
// per route; all share the strategy and stale time.
type CacheConfig struct {
	// Strategy selects the storage substrate. Empty defaults to memory;
	// StrategyNone disables caching entirely.
	Strategy store.Strategy

	// StaleTime is the freshness threshold. Zero applies the cache default.
	StaleTime time.Duration

	// Dir is the base directory for the file strategy. Each route keeps
	// its entries in its own subdirectory, so invalidating one route
	// never touches another's persisted entries.
	Dir string

	// RefetchOnFocus enables stale-entry revalidation via OnFocus.
	RefetchOnFocus bool
}

// InterceptorConfig holds the client's hook points.
type InterceptorConfig struct {
	// Request runs after the outbound request is built, before send.
	Request RequestInterceptor

	// Response runs after the body is decoded, before schema validation.
	Response ResponseInterceptor
}

// Config configures a Client.
type Config struct {
	// BaseURL is prepended to every route path. Required.
	BaseURL string

	// HTTPClient is the transport. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Cache configures response caching.
	Cache CacheConfig

	// Retry enables retry for transient failures. Nil disables retry.
	Retry *resilience.RetryConfig

	// Timeout bounds each individual attempt. Zero means no per-attempt
	// deadline beyond the caller's context.
	Timeout time.Duration

	// Interceptors holds the request and response hooks.
	Interceptors InterceptorConfig

	// DefaultHeaders are attached to every request. Per-call headers win on
	// conflict.
	DefaultHeaders http.Header

	// Observer supplies tracing, metrics, and logging. Nil means noop.
	Observer observe.Observer
}

// refetchFn re-executes one recorded invocation and writes the result back
// through the route's manager.
type refetchFn func(ctx context.Context) error

// Client dispatches calls against its route table. All state hangs off the
// handle; two clients never share caches or refetch registries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	routes     map[string]route.Route
	cacheCfg   CacheConfig
	retryCfg   *resilience.RetryConfig
	timeout    time.Duration
	reqHook    RequestInterceptor
	respHook   ResponseInterceptor
	defaults   http.Header

	managers map[string]*cache.Manager

	tracer  observe.Tracer
	metrics observe.Metrics
	logger  observe.Logger

	// refetch records, per route and cache key, how to reproduce the
	// invocation that populated the entry.
	refetchMu sync.Mutex
	refetch   map[string]map[string]refetchFn
}

// New creates a Client from the configuration and route table. Every route
// is validated up front; a malformed descriptor fails construction rather
// than the first call.
func New(cfg Config, routes map[string]route.Route) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrEmptyBaseURL
	}

	for name, rt := range routes {
		if err := rt.Validate(); err != nil {
			return nil, fmt.Errorf("routeops: route %q: %w", name, err)
		}
	}

	obs := cfg.Observer
	if obs == nil {
		obs = observe.NewNoopObserver()
	}
	metrics, err := observe.NewMetrics(obs.Meter())
	if err != nil {
		return nil, fmt.Errorf("routeops: failed to create metrics: %w", err)
	}

	cacheCfg := cfg.Cache
	if cacheCfg.Strategy == "" {
		cacheCfg.Strategy = store.StrategyMemory
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		routes:     make(map[string]route.Route, len(routes)),
		cacheCfg:   cacheCfg,
		retryCfg:   cfg.Retry,
		timeout:    cfg.Timeout,
		reqHook:    cfg.Interceptors.Request,
		respHook:   cfg.Interceptors.Response,
		defaults:   cfg.DefaultHeaders,
		managers:   make(map[string]*cache.Manager, len(routes)),
		tracer:     observe.NewTracer(obs.Tracer()),
		metrics:    metrics,
		logger:     obs.Logger(),
		refetch:    make(map[string]map[string]refetchFn),
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}

	for name, rt := range routes {
		c.routes[name] = rt
		if cacheCfg.Strategy == store.StrategyNone {
			continue
		}
		mgr, err := cache.New(cache.Config{
			Strategy:  cacheCfg.Strategy,
			StaleTime: cacheCfg.StaleTime,
			Dir:       cacheCfg.Dir,
			Namespace: name,
			Logger:    c.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("routeops: cache for route %q: %w", name, err)
		}
		c.managers[name] = mgr
	}

	return c, nil
}

// Routes returns the names of the configured routes, in unspecified order.
func (c *Client) Routes() []string {
	names := make([]string, 0, len(c.routes))
	for name := range c.routes {
		names = append(names, name)
	}
	return names
}

// manager returns the cache manager for the route, nil when caching is off.
func (c *Client) manager(routeName string) *cache.Manager {
	return c.managers[routeName]
}

func (c *Client) recordRefetch(routeName, key string, fn refetchFn) {
	c.refetchMu.Lock()
	defer c.refetchMu.Unlock()
	byKey, ok := c.refetch[routeName]
	if !ok {
		byKey = make(map[string]refetchFn)
		c.refetch[routeName] = byKey
	}
	byKey[key] = fn
}

func (c *Client) recordedRefetches(routeName string) map[string]refetchFn {
	c.refetchMu.Lock()
	defer c.refetchMu.Unlock()
	out := make(map[string]refetchFn, len(c.refetch[routeName]))
	for k, fn := range c.refetch[routeName] {
		out[k] = fn
	}
	return out
}
