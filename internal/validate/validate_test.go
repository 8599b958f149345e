package validate_test

import (
	"strings"
	"testing"

	"github.com/petasbytes/form-agent/internal/validate"
)

func TestSchema_Valid(t *testing.T) {
	cases := map[string]map[string]any{
		"empty root": {"type": "object", "properties": map[string]any{}, "required": []any{}},
		"formats are annotations": {
			"type": "object",
			"properties": map[string]any{
				"email": map[string]any{"type": "string", "format": "email"},
				"born":  map[string]any{"type": "string", "format": "date"},
				"at":    map[string]any{"type": "string", "format": "date-time"},
				"time":  map[string]any{"type": "string", "format": "time"},
				"odd":   map[string]any{"type": "string", "format": "not-a-known-format"},
			},
		},
		"go native numbers": {
			"type": "object",
			"properties": map[string]any{
				"age": map[string]any{"type": "integer", "minimum": 0, "maximum": 130},
			},
		},
		"nested object": {
			"type": "object",
			"properties": map[string]any{
				"address": map[string]any{
					"type":       "object",
					"properties": map[string]any{"street": map[string]any{"type": "string"}},
					"required":   []string{"street"},
				},
			},
		},
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			res := validate.Schema(doc)
			if !res.Valid {
				t.Fatalf("expected valid, got %v", res.Errors())
			}
			if len(res.Errors()) != 0 {
				t.Fatalf("expected no errors, got %v", res.Errors())
			}
		})
	}
}

func TestSchema_Invalid(t *testing.T) {
	cases := []struct {
		name     string
		doc      any
		wantPath string
	}{
		{
			name:     "unknown type",
			doc:      map[string]any{"type": "object", "properties": map[string]any{"name": map[string]any{"type": "strin"}}},
			wantPath: "/properties/name/type",
		},
		{
			name:     "properties not an object",
			doc:      map[string]any{"type": "object", "properties": "nope"},
			wantPath: "/properties",
		},
		{
			name:     "required not an array",
			doc:      map[string]any{"type": "object", "required": "name"},
			wantPath: "/required",
		},
		{
			name:     "negative minLength",
			doc:      map[string]any{"type": "string", "minLength": -1},
			wantPath: "/minLength",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := validate.Schema(tc.doc)
			if res.Valid {
				t.Fatal("expected invalid")
			}
			errs := res.Errors()
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			found := false
			for _, e := range errs {
				if strings.HasPrefix(e, tc.wantPath+" ") {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected an error at %s, got %v", tc.wantPath, errs)
			}
		})
	}
}

func TestSchema_RootErrorUsesRootLabel(t *testing.T) {
	res := validate.Schema("just a string")
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if !strings.HasPrefix(res.Errors()[0], "(root) ") {
		t.Fatalf("expected (root) prefix, got %q", res.Errors()[0])
	}
}

func TestIssues_Error(t *testing.T) {
	iss := validate.Issues{{Path: "", Message: "a"}, {Path: "/x", Message: "b"}}
	if got := iss.Error(); got != "(root) a; /x b" {
		t.Fatalf("unexpected error text %q", got)
	}
	if got, ok := validate.AsIssues(iss); !ok || len(got) != 2 {
		t.Fatalf("AsIssues: got %v %v", got, ok)
	}
}

func TestChecker(t *testing.T) {
	c, err := validate.Compile("sample", map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"path":     map[string]any{"type": "string"},
			"required": map[string]any{"type": "boolean"},
		},
		"required": []any{"path"},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if iss := c.Check(map[string]any{"path": "a", "extra": 1}); iss != nil {
		t.Fatalf("expected no issues, got %v", iss)
	}
	iss := c.Check(map[string]any{"required": "yes"})
	if len(iss) < 2 {
		t.Fatalf("expected missing path and wrong type issues, got %v", iss)
	}
}
