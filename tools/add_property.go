package tools

import "github.com/petasbytes/form-agent/schema"

type AddPropertyInput struct {
	Path      string         `json:"path,omitempty" jsonschema_description:"Dotted path of the parent object, e.g. \"address\". Omit or use \"\" for the root."`
	Name      string         `json:"name" jsonschema:"minLength=1,pattern=^[^.]+$" jsonschema_description:"Property key in camelCase, e.g. \"firstName\". Must not contain dots; nest with path instead."`
	Schema    map[string]any `json:"schema" jsonschema_description:"JSON Schema for this single property, e.g. {\"type\":\"string\",\"format\":\"email\"}."`
	Required  bool           `json:"required,omitempty" jsonschema_description:"Add the property to the parent's required list."`
	UIOptions map[string]any `json:"uiOptions,omitempty" jsonschema_description:"UI options for the property, e.g. {\"multi\":true} for a textarea."`
}

var AddPropertyDefinition = define[AddPropertyInput](
	string(schema.KindAddProperty),
	"Add ONE property to the form schema. Call once per property. An existing property with the same name is overwritten. Missing parent objects are created.",
)

func (in AddPropertyInput) operation() schema.EditOperation {
	return schema.AddProperty{
		Path:      in.Path,
		Name:      in.Name,
		Schema:    in.Schema,
		Required:  in.Required,
		UIOptions: in.UIOptions,
	}
}
