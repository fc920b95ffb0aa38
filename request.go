package routeops

import (
	"context"
	"net/http"
)

// Request is the mutable outbound request handed to the request interceptor
// after building and before send.
type Request struct {
	// Method is the HTTP method from the route descriptor.
	Method string

	// URL is the full request URL with path parameters substituted and the
	// query string appended.
	URL string

	// Header holds the merged default and per-call headers.
	Header http.Header

	// Body is the serialized JSON body, nil when the call has none.
	Body []byte
}

// RequestInterceptor observes or rewrites the outbound request. Returning an
// error aborts the call before any network activity; returning nil is a
// programming error surfaced as ErrNilRequest.
type RequestInterceptor func(ctx context.Context, req *Request) (*Request, error)

// ResponseInterceptor transforms the decoded response value before schema
// validation. The returned value is what gets validated, cached, and
// delivered.
type ResponseInterceptor func(ctx context.Context, body any) (any, error)
