// Package route defines declarative route descriptors and the mechanics of
// turning one into a concrete URL.
//
// A Route binds an HTTP method and a path template (with :name placeholders)
// to compiled validation schemas. Routes are built once at client
// construction and never mutated afterwards.
package route
