package routeops

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jonwraymond/routeops/cache"
	"github.com/jonwraymond/routeops/observe"
	"github.com/jonwraymond/routeops/resilience"
	"github.com/jonwraymond/routeops/route"
)

// Do dispatches one call against the named route and returns the validated
// JSON payload. The pipeline: cache key, read-cache lookup, request build,
// request interceptor, execution with retry, status and parse handling,
// response interceptor, schema validation, write-back.
func (c *Client) Do(ctx context.Context, routeName string, opts ...CallOption) (json.RawMessage, error) {
	rt, ok := c.routes[routeName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRoute, routeName)
	}

	o := defaultCallOptions()
	for _, opt := range opts {
		opt(&o)
	}

	meta := observe.RouteMeta{Route: routeName, Method: rt.Method, Path: rt.Path}
	ctx, span := c.tracer.StartSpan(ctx, meta)
	start := time.Now()

	payload, err := c.dispatch(ctx, routeName, rt, o, meta)

	c.metrics.RecordCall(ctx, meta, time.Since(start), err)
	c.tracer.EndSpan(span, err)
	return payload, err
}

// Call dispatches like (*Client).Do and decodes the validated payload into T.
func Call[T any](ctx context.Context, c *Client, routeName string, opts ...CallOption) (T, error) {
	var out T
	raw, err := c.Do(ctx, routeName, opts...)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var zero T
		return zero, &ParseError{Err: err}
	}
	return out, nil
}

func (c *Client) dispatch(ctx context.Context, routeName string, rt route.Route, o callOptions, meta observe.RouteMeta) (json.RawMessage, error) {
	key, err := cache.Key(routeName, o.params, o.query)
	if err != nil {
		return nil, err
	}

	mgr := c.manager(routeName)
	if mgr != nil && o.readCache {
		if st, ok := mgr.Get(ctx, key); ok && st.Fresh {
			c.metrics.RecordCacheLookup(ctx, meta, true)
			c.logger.WithRoute(meta).Debug(ctx, "cache hit", observe.Field{Key: "cache.key", Value: key})
			return st.Data, nil
		}
		c.metrics.RecordCacheLookup(ctx, meta, false)
	}

	payload, err := c.fetch(ctx, rt, o, meta)
	if err != nil {
		return nil, err
	}

	if mgr != nil && o.writeCache {
		if err := mgr.Set(ctx, key, payload); err != nil {
			return nil, err
		}
		c.recordRefetch(routeName, key, c.refetcher(routeName, rt, key, o, meta))
	}

	return payload, nil
}

// refetcher captures the invocation so a later Invalidate can reproduce it.
// The replay bypasses the read cache and always writes back.
func (c *Client) refetcher(routeName string, rt route.Route, key string, o callOptions, meta observe.RouteMeta) refetchFn {
	return func(ctx context.Context) error {
		payload, err := c.fetch(ctx, rt, o, meta)
		if err != nil {
			return err
		}
		if mgr := c.manager(routeName); mgr != nil {
			return mgr.Set(ctx, key, payload)
		}
		return nil
	}
}

// fetch performs the network leg of the pipeline, independent of caching.
func (c *Client) fetch(ctx context.Context, rt route.Route, o callOptions, meta observe.RouteMeta) (json.RawMessage, error) {
	req, err := c.buildRequest(rt, o)
	if err != nil {
		return nil, err
	}

	if c.reqHook != nil {
		req, err = c.reqHook(ctx, req)
		if err != nil {
			return nil, err
		}
		if req == nil {
			return nil, ErrNilRequest
		}
	}

	body, err := c.execute(ctx, req, meta)
	if err != nil {
		return nil, err
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &ParseError{Err: err}
	}

	if c.respHook != nil {
		decoded, err = c.respHook(ctx, decoded)
		if err != nil {
			return nil, err
		}
	}

	if rt.Schema.Response != nil {
		if violations := rt.Schema.Response.Validate(decoded); len(violations) > 0 {
			return nil, &ValidationError{Violations: violations}
		}
	}

	if c.respHook == nil {
		return body, nil
	}
	// The interceptor may have rewritten the value; serialize its output.
	payload, err := json.Marshal(decoded)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return payload, nil
}

// buildRequest assembles the outbound request. Everything here fails before
// any network activity: missing path parameters, schema violations in the
// declared body/query/params, body serialization.
func (c *Client) buildRequest(rt route.Route, o callOptions) (*Request, error) {
	if rt.Schema.Params != nil {
		raw := make(map[string]any, len(o.params))
		for k, v := range o.params {
			raw[k] = v
		}
		if violations := rt.Schema.Params.Validate(raw); len(violations) > 0 {
			return nil, &ValidationError{Violations: violations}
		}
	}
	if rt.Schema.Query != nil {
		if violations := rt.Schema.Query.Validate(queryValue(o.query)); len(violations) > 0 {
			return nil, &ValidationError{Violations: violations}
		}
	}

	path, err := route.BuildPath(rt.Path, o.params)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + path
	if qs := route.BuildQuery(o.query); qs != "" {
		url += "?" + qs
	}

	header := http.Header{}
	for k, vs := range c.defaults {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	for k, vs := range o.headers {
		header.Del(k)
		for _, v := range vs {
			header.Add(k, v)
		}
	}

	var body []byte
	if o.hasBody {
		if o.indent > 0 {
			body, err = json.MarshalIndent(o.body, "", strings.Repeat(" ", o.indent))
		} else {
			body, err = json.Marshal(o.body)
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		if rt.Schema.Body != nil {
			if violations := rt.Schema.Body.ValidateJSON(body); len(violations) > 0 {
				return nil, &ValidationError{Violations: violations}
			}
		}
		header.Set("Content-Type", "application/json")
	}

	return &Request{
		Method: rt.Method,
		URL:    url,
		Header: header,
		Body:   body,
	}, nil
}

// queryValue normalizes the query map for schema validation the same way
// the URL builder and keyer see it: nil values are absent.
func queryValue(query map[string]any) map[string]any {
	out := make(map[string]any, len(query))
	for k, v := range query {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// execute sends the request, composing retry and per-attempt timeout when
// configured. On success it returns the response body; failures come back
// as *NetworkError or *StatusError.
func (c *Client) execute(ctx context.Context, req *Request, meta observe.RouteMeta) ([]byte, error) {
	var body []byte

	attempt := func(ctx context.Context) error {
		b, err := c.send(ctx, req)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	var opts []resilience.ExecutorOption
	if c.retryCfg != nil {
		cfg := *c.retryCfg
		if cfg.RetryIf == nil {
			cfg.RetryIf = Retryable
		}
		userOnRetry := cfg.OnRetry
		cfg.OnRetry = func(n int, err error, delay time.Duration) {
			c.metrics.RecordRetry(ctx, meta, n)
			c.logger.WithRoute(meta).Warn(ctx, "retrying request",
				observe.Field{Key: "attempt", Value: n},
				observe.Field{Key: "delay", Value: delay.String()},
				observe.Field{Key: "error", Value: err.Error()},
			)
			if userOnRetry != nil {
				userOnRetry(n, err, delay)
			}
		}
		opts = append(opts, resilience.WithRetry(resilience.NewRetry(cfg)))
	}
	if c.timeout > 0 {
		opts = append(opts, resilience.WithTimeout(c.timeout))
	}

	if len(opts) == 0 {
		if err := attempt(ctx); err != nil {
			return nil, err
		}
		return body, nil
	}

	if err := resilience.NewExecutor(opts...).Execute(ctx, attempt); err != nil {
		return nil, err
	}
	return body, nil
}

// send performs a single HTTP exchange.
func (c *Client) send(ctx context.Context, req *Request) ([]byte, error) {
	var reader io.Reader
	if req.Body != nil {
		reader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, reader)
	if err != nil {
		return nil, fmt.Errorf("routeops: failed to build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: req.URL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
			Message:    extractErrorMessage(body, resp.Status),
		}
	}

	return body, nil
}

// extractErrorMessage pulls a human message out of a JSON error body,
// falling back to the status line.
func extractErrorMessage(body []byte, status string) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return status
}

// Retryable is the default retry classification: transport failures and
// per-attempt timeouts are retryable, HTTP statuses per StatusError, and
// everything else (parse, validation, parameter failures, cancellation) is
// terminal.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, resilience.ErrTimeout) {
		return true
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return false
}
