package schema

import (
	"errors"
	"fmt"

	"github.com/petasbytes/form-agent/internal/schemapath"
	"github.com/petasbytes/form-agent/internal/validate"
)

// ValidationError rejects a candidate document whose jsonSchema is not a valid
// draft-07 schema. It carries one issue per violated meta-schema rule.
type ValidationError struct {
	Issues validate.Issues
}

func (e *ValidationError) Error() string {
	return "Schema validation failed: " + e.Issues.Error()
}

// Messages returns one "<instance-path-or-(root)> <message>" line per issue.
func (e *ValidationError) Messages() []string { return e.Issues.Strings() }

func (e *ValidationError) Unwrap() error { return e.Issues }

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(err error) *ValidationError {
	return &ValidationError{Issues: validate.Issues{{Message: err.Error()}}}
}

// Result is a successfully applied operation. Document keeps the input version;
// bumping it is the caller's job. Changes lists the primitive edits in order and
// Inverse undoes them when replayed with Revert.
type Result struct {
	Document Document
	Changes  []Change
	Inverse  []Change
}

// Apply runs op against a private copy of doc and validates the outcome. The
// only failure is a *ValidationError, in which case doc is untouched and no
// partial result escapes.
func Apply(doc Document, op EditOperation) (Result, error) {
	if op == nil {
		return Result{}, invalid(errors.New("no operation"))
	}
	base, err := doc.Clone()
	if err != nil {
		return Result{}, invalid(err)
	}
	e := newEditor(base)
	if err := e.run(op); err != nil {
		return Result{}, invalid(err)
	}
	next := e.document(doc.Version)
	if res := validate.Schema(next.JSONSchema); !res.Valid {
		return Result{}, &ValidationError{Issues: res.Issues}
	}
	return Result{Document: next, Changes: e.changes, Inverse: e.inverseChanges()}, nil
}

func (e *editor) run(op EditOperation) error {
	switch o := op.(type) {
	case AddProperty:
		return e.addProperty(o)
	case *AddProperty:
		return e.addProperty(*o)
	case UpdateProperty:
		return e.updateProperty(o)
	case *UpdateProperty:
		return e.updateProperty(*o)
	case RemoveProperty:
		return e.removeProperty(o)
	case *RemoveProperty:
		return e.removeProperty(*o)
	case ReplaceSubtree:
		return e.replaceSubtree(o)
	case *ReplaceSubtree:
		return e.replaceSubtree(*o)
	default:
		return fmt.Errorf("unsupported operation %T", op)
	}
}

func (e *editor) addProperty(o AddProperty) error {
	sch, err := cloneMap(o.Schema)
	if err != nil {
		return err
	}
	if err := e.ensureProperties(o.Path); err != nil {
		return err
	}
	if err := e.set(schemapath.Property(o.Path, o.Name), sch); err != nil {
		return err
	}
	if o.Required {
		if err := e.addRequired(o.Path, o.Name); err != nil {
			return err
		}
	}
	return e.setUI(schemapath.UIProperty(o.Path, o.Name), o.UIOptions)
}

func (e *editor) updateProperty(o UpdateProperty) error {
	sch, err := cloneMap(o.Schema)
	if err != nil {
		return err
	}
	parent, name := schemapath.Split(o.Path)
	if err := e.ensureProperties(parent); err != nil {
		return err
	}
	if err := e.set(schemapath.Property(parent, name), sch); err != nil {
		return err
	}
	if o.Required != nil {
		if *o.Required {
			err = e.addRequired(parent, name)
		} else {
			err = e.dropRequired(parent, name)
		}
		if err != nil {
			return err
		}
	}
	return e.setUI(schemapath.UIProperty(parent, name), o.UIOptions)
}

func (e *editor) removeProperty(o RemoveProperty) error {
	parent, name := schemapath.Split(o.Path)
	if err := e.remove(schemapath.Property(parent, name)); err != nil {
		return err
	}
	if err := e.dropRequired(parent, name); err != nil {
		return err
	}
	return e.remove(schemapath.UIProperty(parent, name))
}

func (e *editor) replaceSubtree(o ReplaceSubtree) error {
	sch, err := cloneMap(o.Schema)
	if err != nil {
		return err
	}
	if o.Path == "" {
		if err := e.set(schemapath.JSONSchemaRoot, sch); err != nil {
			return err
		}
		if o.UISchema == nil {
			return nil
		}
		ui, err := cloneMap(o.UISchema)
		if err != nil {
			return err
		}
		return e.set(schemapath.UISchemaRoot, ui)
	}
	parent, name := schemapath.Split(o.Path)
	if err := e.ensureProperties(parent); err != nil {
		return err
	}
	if err := e.set(schemapath.Property(parent, name), sch); err != nil {
		return err
	}
	return e.setUI(schemapath.UI(o.Path), o.UISchema)
}

// setUI overwrites a UI slot wholesale; nil options leave it alone.
func (e *editor) setUI(ptr string, opts map[string]any) error {
	if opts == nil {
		return nil
	}
	v, err := cloneMap(opts)
	if err != nil {
		return err
	}
	return e.set(ptr, v)
}

// Replace swaps the trees of doc wholesale (a nil argument keeps the current
// tree) and bumps the version. The replacement goes through the same
// validation gate as every edit.
func Replace(doc Document, jsonSchema, uiSchema map[string]any) (Document, error) {
	next := Document{JSONSchema: doc.JSONSchema, UISchema: doc.UISchema, Version: doc.Version + 1}
	if jsonSchema != nil {
		next.JSONSchema = jsonSchema
	}
	if uiSchema != nil {
		next.UISchema = uiSchema
	}
	next, err := next.Clone()
	if err != nil {
		return Document{}, invalid(err)
	}
	if res := validate.Schema(next.JSONSchema); !res.Valid {
		return Document{}, &ValidationError{Issues: res.Issues}
	}
	return next, nil
}

// Revert replays changes (typically Result.Inverse) on a copy of doc. The
// version is left as is.
func Revert(doc Document, changes []Change) (Document, error) {
	base, err := doc.Clone()
	if err != nil {
		return Document{}, err
	}
	e := newEditor(base)
	for _, c := range changes {
		if err := e.apply(c); err != nil {
			return Document{}, fmt.Errorf("revert %s %s: %w", c.Op, c.Path, err)
		}
	}
	return e.document(doc.Version), nil
}
