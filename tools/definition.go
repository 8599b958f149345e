package tools

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	json "github.com/goccy/go-json"
	"github.com/invopop/jsonschema"

	"github.com/petasbytes/form-agent/internal/validate"
)

type ToolDefinition struct {
	Name        string
	Description string
	// InputSchema is the JSON Schema of the argument object.
	InputSchema map[string]any

	checker *validate.Checker
	decode  func(args []byte) (any, error)
}

// GenerateSchema reflects T into a self-contained JSON Schema object. Fields
// without omitempty are required; extra properties are allowed.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	var v T
	b, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		panic(fmt.Sprintf("tools: marshal schema for %T: %v", v, err))
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		panic(fmt.Sprintf("tools: decode schema for %T: %v", v, err))
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out
}

// define builds a definition whose arguments decode into T. The input schema
// is static, so a compile failure is a programming error.
func define[T any](name, description string) ToolDefinition {
	schema := GenerateSchema[T]()
	c, err := validate.Compile(name, schema)
	if err != nil {
		panic(fmt.Sprintf("tools: %v", err))
	}
	return ToolDefinition{
		Name:        name,
		Description: description,
		InputSchema: schema,
		checker:     c,
		decode: func(b []byte) (any, error) {
			var in T
			if err := json.Unmarshal(b, &in); err != nil {
				return nil, err
			}
			return in, nil
		},
	}
}

// AnthropicParam converts the input schema for the Messages API.
func (d ToolDefinition) AnthropicParam() anthropic.ToolInputSchemaParam {
	p := anthropic.ToolInputSchemaParam{Properties: d.InputSchema["properties"]}
	if req, ok := d.InputSchema["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				p.Required = append(p.Required, s)
			}
		}
	}
	return p
}

// Parse checks args against the input schema and decodes them into the tool's
// input struct.
func (d ToolDefinition) Parse(args map[string]any) (any, error) {
	if d.checker == nil || d.decode == nil {
		return nil, fmt.Errorf("tool %s has no input schema", d.Name)
	}
	if iss := d.checker.Check(args); len(iss) > 0 {
		return nil, iss
	}
	b, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return d.decode(b)
}
