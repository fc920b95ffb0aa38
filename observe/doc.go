// Package observe provides observability primitives for route dispatch.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. The client wires the observer into its request
// pipeline; everything degrades to no-ops when disabled.
package observe
