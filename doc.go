// Package routeops dispatches typed HTTP calls from declarative route
// definitions.
//
// A Client is constructed from a base URL and a table of routes; each route
// names a method, a path template with :name placeholders, and compiled
// schemas for its response and optionally its body, query, and params. A
// call flows through a fixed pipeline: cache-key derivation, read-cache
// lookup, request build, request interceptor, execution with bounded retry,
// JSON decode, response interceptor, schema validation, and write-back.
//
//	routes := map[string]route.Route{
//	    "getUser": {
//	        Method: "GET",
//	        Path:   "/users/:id",
//	        Schema: route.RouteSchema{
//	            Response: schema.Object(
//	                schema.Req("id", schema.String()),
//	                schema.Req("name", schema.String()),
//	            ),
//	        },
//	    },
//	}
//
//	client, err := routeops.New(routeops.Config{BaseURL: api}, routes)
//	user, err := routeops.Call[User](ctx, client, "getUser",
//	    routeops.WithParams(map[string]string{"id": "42"}))
//
// Responses are cached per route with read-time staleness: a fresh entry is
// served without touching the network, a stale one triggers a refetch.
// Invalidate clears a route's entries and replays the recorded invocations.
// All state hangs off the Client handle; two clients are fully independent.
package routeops
