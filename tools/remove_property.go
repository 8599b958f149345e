package tools

import "github.com/petasbytes/form-agent/schema"

type RemovePropertyInput struct {
	Path string `json:"path" jsonschema:"minLength=1" jsonschema_description:"Full dotted path of the property to remove, e.g. \"email\"."`
}

var RemovePropertyDefinition = define[RemovePropertyInput](
	string(schema.KindRemoveProperty),
	"Remove a property together with its required entry and UI options. Removing a missing property is not an error.",
)

func (in RemovePropertyInput) operation() schema.EditOperation {
	return schema.RemoveProperty{Path: in.Path}
}
