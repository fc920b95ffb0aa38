package schema

import (
	"encoding/json"
	"fmt"
	"math"
)

// Kind identifies the JSON shape a Schema accepts.
type Kind int

const (
	// KindAny accepts every value, including null.
	KindAny Kind = iota
	// KindString accepts JSON strings.
	KindString
	// KindNumber accepts JSON numbers.
	KindNumber
	// KindInteger accepts JSON numbers with no fractional part.
	KindInteger
	// KindBoolean accepts JSON booleans.
	KindBoolean
	// KindObject accepts JSON objects with declared fields.
	KindObject
	// KindArray accepts JSON arrays with a single element schema.
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Violation describes a single field-level validation failure.
type Violation struct {
	// Path is the location of the failing value, e.g. "items[2].id".
	// Empty for the root value.
	Path string

	// Message describes why the value failed.
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Field declares one object member.
type Field struct {
	Name     string
	Schema   *Schema
	Optional bool
}

// Req declares a required object field.
func Req(name string, s *Schema) Field {
	return Field{Name: name, Schema: s}
}

// Opt declares an optional object field. Absent values pass; present
// values are still validated.
func Opt(name string, s *Schema) Field {
	return Field{Name: name, Schema: s, Optional: true}
}

// Schema is a compiled validator for one JSON shape.
// Build it once (typically at client construction) and reuse it; Validate
// is safe for concurrent use.
type Schema struct {
	kind   Kind
	fields []Field
	elem   *Schema
}

// Any returns a schema accepting every value.
func Any() *Schema { return &Schema{kind: KindAny} }

// String returns a schema accepting JSON strings.
func String() *Schema { return &Schema{kind: KindString} }

// Number returns a schema accepting JSON numbers.
func Number() *Schema { return &Schema{kind: KindNumber} }

// Integer returns a schema accepting whole JSON numbers.
func Integer() *Schema { return &Schema{kind: KindInteger} }

// Boolean returns a schema accepting JSON booleans.
func Boolean() *Schema { return &Schema{kind: KindBoolean} }

// Object returns a schema accepting JSON objects with the declared fields.
// Undeclared members are ignored.
func Object(fields ...Field) *Schema {
	return &Schema{kind: KindObject, fields: fields}
}

// ArrayOf returns a schema accepting JSON arrays whose elements all match
// elem.
func ArrayOf(elem *Schema) *Schema {
	return &Schema{kind: KindArray, elem: elem}
}

// Kind returns the schema's kind.
func (s *Schema) Kind() Kind { return s.kind }

// Validate checks a decoded JSON value (the result of json.Unmarshal into
// any) against the schema. It returns nil when the value conforms.
func (s *Schema) Validate(raw any) []Violation {
	return s.validate("", raw, nil)
}

// ValidateJSON decodes raw JSON and validates it. A decode failure is
// reported as a root violation rather than an error so callers have a
// single result shape.
func (s *Schema) ValidateJSON(data []byte) []Violation {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return []Violation{{Message: "invalid JSON: " + err.Error()}}
	}
	return s.Validate(v)
}

func (s *Schema) validate(path string, raw any, acc []Violation) []Violation {
	switch s.kind {
	case KindAny:
		return acc

	case KindString:
		if _, ok := raw.(string); !ok {
			acc = append(acc, mismatch(path, KindString, raw))
		}
		return acc

	case KindNumber:
		if !isNumber(raw) {
			acc = append(acc, mismatch(path, KindNumber, raw))
		}
		return acc

	case KindInteger:
		f, ok := asFloat(raw)
		if !ok || math.Trunc(f) != f {
			acc = append(acc, mismatch(path, KindInteger, raw))
		}
		return acc

	case KindBoolean:
		if _, ok := raw.(bool); !ok {
			acc = append(acc, mismatch(path, KindBoolean, raw))
		}
		return acc

	case KindObject:
		obj, ok := raw.(map[string]any)
		if !ok {
			return append(acc, mismatch(path, KindObject, raw))
		}
		for _, f := range s.fields {
			val, present := obj[f.Name]
			fieldPath := joinPath(path, f.Name)
			if !present {
				if !f.Optional {
					acc = append(acc, Violation{Path: fieldPath, Message: "required field is missing"})
				}
				continue
			}
			acc = f.Schema.validate(fieldPath, val, acc)
		}
		return acc

	case KindArray:
		arr, ok := raw.([]any)
		if !ok {
			return append(acc, mismatch(path, KindArray, raw))
		}
		for i, el := range arr {
			acc = s.elem.validate(fmt.Sprintf("%s[%d]", path, i), el, acc)
		}
		return acc

	default:
		return append(acc, Violation{Path: path, Message: "unknown schema kind"})
	}
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}

func mismatch(path string, want Kind, raw any) Violation {
	return Violation{
		Path:    path,
		Message: fmt.Sprintf("expected %s, got %s", want, typeName(raw)),
	}
}

func isNumber(raw any) bool {
	_, ok := asFloat(raw)
	return ok
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func typeName(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", raw)
	}
}
