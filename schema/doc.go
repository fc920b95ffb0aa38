// Package schema provides compiled validators for JSON payloads.
//
// Schemas are built once from typed field constructors and expose a single
// Validate entry point returning field-level violations. Consumers depend
// only on the Schema type, not on any validation engine.
package schema
