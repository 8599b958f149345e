package schema

import (
	"fmt"

	"github.com/agentflare-ai/jsonpointer"

	"github.com/petasbytes/form-agent/internal/schemapath"
)

// Change op values follow RFC 6902.
const (
	OpAdd     = "add"
	OpReplace = "replace"
	OpRemove  = "remove"
)

// Change is one primitive edit. Path is a JSON Pointer relative to the
// {jsonSchema, uiSchema} pair, e.g. "/jsonSchema/properties/name".
type Change struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// editor performs pointer edits on a private clone and records each one
// together with its inverse.
type editor struct {
	root    any
	changes []Change
	inverse []Change
}

func newEditor(d Document) *editor {
	return &editor{root: map[string]any{
		"jsonSchema": d.JSONSchema,
		"uiSchema":   d.UISchema,
	}}
}

func (e *editor) get(ptr string) (any, bool) {
	v, err := jsonpointer.Get(e.root, ptr)
	if err != nil {
		return nil, false
	}
	return v, true
}

func (e *editor) set(ptr string, v any) error {
	old, existed := e.get(ptr)
	root, err := jsonpointer.Set(e.root, ptr, v)
	if err != nil {
		return fmt.Errorf("set %s: %w", ptr, err)
	}
	e.root = root
	fwd, err := cloneValue(v)
	if err != nil {
		return err
	}
	if !existed {
		e.record(Change{Op: OpAdd, Path: ptr, Value: fwd}, Change{Op: OpRemove, Path: ptr})
		return nil
	}
	prev, err := cloneValue(old)
	if err != nil {
		return err
	}
	e.record(Change{Op: OpReplace, Path: ptr, Value: fwd}, Change{Op: OpReplace, Path: ptr, Value: prev})
	return nil
}

func (e *editor) remove(ptr string) error {
	old, existed := e.get(ptr)
	if !existed {
		return nil
	}
	prev, err := cloneValue(old)
	if err != nil {
		return err
	}
	root, err := jsonpointer.Remove(e.root, ptr)
	if err != nil {
		return fmt.Errorf("remove %s: %w", ptr, err)
	}
	e.root = root
	e.record(Change{Op: OpRemove, Path: ptr}, Change{Op: OpAdd, Path: ptr, Value: prev})
	return nil
}

func (e *editor) record(fwd, inv Change) {
	e.changes = append(e.changes, fwd)
	e.inverse = append(e.inverse, inv)
}

// ensureMap makes ptr hold an object, writing fresh() when the slot is missing
// or holds something else.
func (e *editor) ensureMap(ptr string, fresh func() map[string]any) error {
	if v, ok := e.get(ptr); ok {
		if m, isMap := v.(map[string]any); isMap && m != nil {
			return nil
		}
	}
	return e.set(ptr, fresh())
}

// ensureProperties creates every missing link between the root and the
// properties map owned by path. Fabricated intermediate properties are object
// schemas.
func (e *editor) ensureProperties(path string) error {
	if err := e.ensureMap(schemapath.JSONSchemaRoot, objectSchema); err != nil {
		return err
	}
	cur := ""
	for _, seg := range schemapath.Segments(path) {
		if err := e.ensureMap(schemapath.Properties(cur), emptyMap); err != nil {
			return err
		}
		cur = schemapath.Join(cur, seg)
		if err := e.ensureMap(schemapath.Object(cur), objectSchema); err != nil {
			return err
		}
	}
	return e.ensureMap(schemapath.Properties(path), emptyMap)
}

func (e *editor) addRequired(path, name string) error {
	ptr := schemapath.Required(path)
	cur, _ := e.get(ptr)
	arr, ok := cur.([]any)
	if !ok {
		return e.set(ptr, []any{name})
	}
	for _, r := range arr {
		if r == name {
			return nil
		}
	}
	next := make([]any, 0, len(arr)+1)
	next = append(next, arr...)
	return e.set(ptr, append(next, name))
}

func (e *editor) dropRequired(path, name string) error {
	ptr := schemapath.Required(path)
	cur, _ := e.get(ptr)
	arr, ok := cur.([]any)
	if !ok {
		return nil
	}
	next := make([]any, 0, len(arr))
	for _, r := range arr {
		if r != name {
			next = append(next, r)
		}
	}
	if len(next) == len(arr) {
		return nil
	}
	return e.set(ptr, next)
}

// apply replays a recorded change.
func (e *editor) apply(c Change) error {
	switch c.Op {
	case OpAdd, OpReplace:
		v, err := cloneValue(c.Value)
		if err != nil {
			return err
		}
		return e.set(c.Path, v)
	case OpRemove:
		return e.remove(c.Path)
	default:
		return fmt.Errorf("unsupported change op: %s", c.Op)
	}
}

func (e *editor) document(version int) Document {
	m, _ := e.root.(map[string]any)
	js, _ := m["jsonSchema"].(map[string]any)
	ui, _ := m["uiSchema"].(map[string]any)
	if ui == nil {
		ui = map[string]any{}
	}
	return Document{JSONSchema: js, UISchema: ui, Version: version}
}

func (e *editor) inverseChanges() []Change {
	out := make([]Change, len(e.inverse))
	for i, c := range e.inverse {
		out[len(e.inverse)-1-i] = c
	}
	return out
}

func objectSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func emptyMap() map[string]any { return map[string]any{} }
