package tools

import "github.com/petasbytes/form-agent/schema"

type UpdatePropertyInput struct {
	Path      string         `json:"path" jsonschema:"minLength=1" jsonschema_description:"Full dotted path of the property, e.g. \"address.street\"."`
	Schema    map[string]any `json:"schema" jsonschema_description:"New JSON Schema for the property. Replaces the old one wholesale."`
	Required  *bool          `json:"required,omitempty" jsonschema_description:"true adds, false removes the property from the parent's required list. Omit to leave it unchanged."`
	UIOptions map[string]any `json:"uiOptions,omitempty" jsonschema_description:"Replacement UI options for the property."`
}

var UpdatePropertyDefinition = define[UpdatePropertyInput](
	string(schema.KindUpdateProperty),
	"Replace the JSON Schema and optionally the required status or UI options of an existing property.",
)

func (in UpdatePropertyInput) operation() schema.EditOperation {
	return schema.UpdateProperty{
		Path:      in.Path,
		Schema:    in.Schema,
		Required:  in.Required,
		UIOptions: in.UIOptions,
	}
}
