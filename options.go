package routeops

import "net/http"

// callOptions is the resolved per-call configuration. Read and write caching
// are decoupled: either side can be toggled without affecting the other.
type callOptions struct {
	params     map[string]string
	query      map[string]any
	body       any
	hasBody    bool
	headers    http.Header
	readCache  bool
	writeCache bool
	indent     int
}

func defaultCallOptions() callOptions {
	return callOptions{
		readCache:  true,
		writeCache: true,
	}
}

// CallOption customizes a single invocation.
type CallOption func(*callOptions)

// WithParams supplies values for the route's path placeholders.
func WithParams(params map[string]string) CallOption {
	return func(o *callOptions) {
		o.params = params
	}
}

// WithQuery supplies query string values. Nil values are treated as absent:
// they are omitted from the URL and do not affect the cache key.
func WithQuery(query map[string]any) CallOption {
	return func(o *callOptions) {
		o.query = query
	}
}

// WithBody supplies a value to JSON-serialize as the request body.
func WithBody(body any) CallOption {
	return func(o *callOptions) {
		o.body = body
		o.hasBody = true
	}
}

// WithHeaders supplies per-call headers. They win over the client's default
// headers on conflict.
func WithHeaders(h http.Header) CallOption {
	return func(o *callOptions) {
		o.headers = h
	}
}

// WithHeader sets a single per-call header.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Set(key, value)
	}
}

// WithReadCache toggles serving this call from a fresh cache entry.
// Defaults to true.
func WithReadCache(enabled bool) CallOption {
	return func(o *callOptions) {
		o.readCache = enabled
	}
}

// WithWriteCache toggles writing this call's result back to the cache.
// Defaults to true.
func WithWriteCache(enabled bool) CallOption {
	return func(o *callOptions) {
		o.writeCache = enabled
	}
}

// WithIndent pretty-prints the serialized body with n spaces of indentation.
func WithIndent(n int) CallOption {
	return func(o *callOptions) {
		if n > 0 {
			o.indent = n
		}
	}
}
