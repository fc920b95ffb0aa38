package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	return v
}

func TestSchema_Scalars(t *testing.T) {
	tests := []struct {
		name   string
		schema *Schema
		raw    string
		valid  bool
	}{
		{"string ok", String(), `"hello"`, true},
		{"string wrong type", String(), `42`, false},
		{"number ok", Number(), `3.14`, true},
		{"number from int", Number(), `7`, true},
		{"number wrong type", Number(), `"3.14"`, false},
		{"integer ok", Integer(), `42`, true},
		{"integer rejects fraction", Integer(), `42.5`, false},
		{"integer wrong type", Integer(), `true`, false},
		{"boolean ok", Boolean(), `false`, true},
		{"boolean wrong type", Boolean(), `0`, false},
		{"any accepts null", Any(), `null`, true},
		{"any accepts object", Any(), `{"x":1}`, true},
		{"string rejects null", String(), `null`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := tt.schema.Validate(decode(t, tt.raw))
			if tt.valid && len(violations) != 0 {
				t.Errorf("Validate(%s) = %v, want none", tt.raw, violations)
			}
			if !tt.valid && len(violations) == 0 {
				t.Errorf("Validate(%s) = none, want violations", tt.raw)
			}
		})
	}
}

func TestSchema_Object(t *testing.T) {
	user := Object(
		Req("id", String()),
		Req("age", Integer()),
		Opt("email", String()),
	)

	t.Run("valid with optional absent", func(t *testing.T) {
		if v := user.Validate(decode(t, `{"id":"u1","age":30}`)); len(v) != 0 {
			t.Errorf("violations = %v, want none", v)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		v := user.Validate(decode(t, `{"age":30}`))
		if len(v) != 1 {
			t.Fatalf("violations = %v, want 1", v)
		}
		if v[0].Path != "id" {
			t.Errorf("Path = %q, want \"id\"", v[0].Path)
		}
	})

	t.Run("optional present but wrong type", func(t *testing.T) {
		v := user.Validate(decode(t, `{"id":"u1","age":30,"email":5}`))
		if len(v) != 1 || v[0].Path != "email" {
			t.Errorf("violations = %v, want one at \"email\"", v)
		}
	})

	t.Run("undeclared members ignored", func(t *testing.T) {
		if v := user.Validate(decode(t, `{"id":"u1","age":30,"extra":[1,2]}`)); len(v) != 0 {
			t.Errorf("violations = %v, want none", v)
		}
	})

	t.Run("non-object root", func(t *testing.T) {
		v := user.Validate(decode(t, `[1,2,3]`))
		if len(v) != 1 {
			t.Fatalf("violations = %v, want 1", v)
		}
		if !strings.Contains(v[0].Message, "expected object") {
			t.Errorf("Message = %q, want object mismatch", v[0].Message)
		}
	})
}

func TestSchema_NestedPaths(t *testing.T) {
	s := Object(
		Req("items", ArrayOf(Object(
			Req("id", String()),
		))),
	)

	v := s.Validate(decode(t, `{"items":[{"id":"a"},{"id":7}]}`))
	if len(v) != 1 {
		t.Fatalf("violations = %v, want 1", v)
	}
	if v[0].Path != "items[1].id" {
		t.Errorf("Path = %q, want \"items[1].id\"", v[0].Path)
	}
}

func TestSchema_Array(t *testing.T) {
	s := ArrayOf(Integer())

	if v := s.Validate(decode(t, `[1,2,3]`)); len(v) != 0 {
		t.Errorf("violations = %v, want none", v)
	}

	v := s.Validate(decode(t, `[1,"x",3.5]`))
	if len(v) != 2 {
		t.Errorf("violations = %v, want 2", v)
	}
}

func TestSchema_ValidateJSON(t *testing.T) {
	s := Object(Req("ok", Boolean()))

	if v := s.ValidateJSON([]byte(`{"ok":true}`)); len(v) != 0 {
		t.Errorf("violations = %v, want none", v)
	}

	v := s.ValidateJSON([]byte(`{not json`))
	if len(v) != 1 {
		t.Fatalf("violations = %v, want 1", v)
	}
	if !strings.Contains(v[0].Message, "invalid JSON") {
		t.Errorf("Message = %q, want invalid JSON", v[0].Message)
	}
}

func TestViolation_String(t *testing.T) {
	v := Violation{Path: "user.id", Message: "required field is missing"}
	if got := v.String(); got != "user.id: required field is missing" {
		t.Errorf("String() = %q", got)
	}

	root := Violation{Message: "invalid JSON"}
	if got := root.String(); got != "invalid JSON" {
		t.Errorf("String() = %q", got)
	}
}
