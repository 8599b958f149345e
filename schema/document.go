package schema

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Document is one version of the form definition: a JSON Schema tree, a flat
// UI Schema keyed by dotted property path, and the version counter.
//
// Documents are values. Nothing in this package mutates the maps of a Document
// it was given; every edit produces fresh trees.
type Document struct {
	JSONSchema map[string]any `json:"jsonSchema"`
	UISchema   map[string]any `json:"uiSchema"`
	Version    int            `json:"version"`
}

// Empty returns the version 0 document every session starts with.
func Empty() Document {
	return Document{
		JSONSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
			"required":   []any{},
		},
		UISchema: map[string]any{},
		Version:  0,
	}
}

// Clone returns a deep copy of d, normalised to the generic JSON value model.
func (d Document) Clone() (Document, error) {
	js, err := cloneMap(d.JSONSchema)
	if err != nil {
		return Document{}, fmt.Errorf("clone jsonSchema: %w", err)
	}
	ui, err := cloneMap(d.UISchema)
	if err != nil {
		return Document{}, fmt.Errorf("clone uiSchema: %w", err)
	}
	if ui == nil {
		ui = map[string]any{}
	}
	return Document{JSONSchema: js, UISchema: ui, Version: d.Version}, nil
}

// Equal reports whether both trees of a and b hold the same JSON and the
// versions match.
func Equal(a, b Document) bool {
	if a.Version != b.Version {
		return false
	}
	return sameJSON(a.JSONSchema, b.JSONSchema) && sameJSON(a.UISchema, b.UISchema)
}

func sameJSON(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	// map keys are sorted by the encoder, so byte equality is structural equality
	return string(ab) == string(bb)
}

func cloneMap(m map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}
	v, err := cloneValue(m)
	if err != nil {
		return nil, err
	}
	out, _ := v.(map[string]any)
	return out, nil
}

// cloneValue deep-copies v through a JSON round trip.
func cloneValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
