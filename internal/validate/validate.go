// Package validate checks JSON Schema documents against the draft-07
// meta-schema and tool argument bags against tool input schemas.
//
// Only keyword shape is checked. Format values used inside a candidate schema
// ("email", "date", "date-time", "time", ...) are plain strings to the
// meta-schema and never block a document.
package validate

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// MetaSchemaURL is the canonical id of the draft-07 meta-schema.
const MetaSchemaURL = "http://json-schema.org/draft-07/schema"

//go:embed draft-07.json
var draft07 []byte

var (
	metaOnce   sync.Once
	metaSchema *jsonschema.Schema
	metaErr    error
)

func meta() (*jsonschema.Schema, error) {
	metaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft7
		if err := c.AddResource(MetaSchemaURL, bytes.NewReader(draft07)); err != nil {
			metaErr = fmt.Errorf("add meta-schema: %w", err)
			return
		}
		metaSchema, metaErr = c.Compile(MetaSchemaURL)
	})
	return metaSchema, metaErr
}

// Result is the outcome of a meta-schema check.
type Result struct {
	Valid  bool
	Issues Issues
}

// Errors renders one "<instance-path-or-(root)> <message>" line per issue.
func (r Result) Errors() []string { return r.Issues.Strings() }

// Schema validates v as a JSON Schema document (not as data).
func Schema(v any) Result {
	m, err := meta()
	if err != nil {
		return Result{Issues: Issues{{Message: err.Error()}}}
	}
	iss := check(m, v)
	return Result{Valid: len(iss) == 0, Issues: iss}
}

// Checker validates values against one compiled schema.
type Checker struct {
	name   string
	schema *jsonschema.Schema
}

// Compile compiles a schema document (for example a tool input schema) into a
// Checker. The "$schema" keyword is ignored; draft-07 semantics apply.
func Compile(name string, schema map[string]any) (*Checker, error) {
	doc := make(map[string]any, len(schema))
	for k, v := range schema {
		if k == "$schema" || k == "$id" {
			continue
		}
		doc[k] = v
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %s: %w", name, err)
	}
	url := name + ".json"
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Checker{name: name, schema: s}, nil
}

// Check returns the issues of v against the compiled schema, or nil.
func (c *Checker) Check(v any) Issues {
	return check(c.schema, v)
}

func check(s *jsonschema.Schema, v any) Issues {
	n, err := Normalize(v)
	if err != nil {
		return Issues{{Message: err.Error()}}
	}
	err = s.Validate(n)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return Issues{{Message: err.Error()}}
	}
	seen := map[Issue]bool{}
	return leaves(ve, nil, seen)
}

// leaves flattens the cause tree to the innermost failures, which carry the
// specific keyword message.
func leaves(ve *jsonschema.ValidationError, out Issues, seen map[Issue]bool) Issues {
	if len(ve.Causes) == 0 {
		it := Issue{Path: ve.InstanceLocation, Message: ve.Message}
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
		return out
	}
	for _, c := range ve.Causes {
		out = leaves(c, out, seen)
	}
	return out
}

// Normalize converts v into the generic JSON value model (map[string]any,
// []any, float64, string, bool, nil) with a JSON round trip.
func Normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON-representable: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("value is not JSON-representable: %w", err)
	}
	return out, nil
}
