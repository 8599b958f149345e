package tools

import "github.com/petasbytes/form-agent/schema"

type ReplaceSubtreeInput struct {
	Path     string         `json:"path,omitempty" jsonschema_description:"Dotted property path of the subtree, e.g. \"address\" or \"address.city\". Omit or use \"\" to replace the whole form."`
	Schema   map[string]any `json:"schema" jsonschema_description:"Replacement JSON Schema."`
	UISchema map[string]any `json:"uiSchema,omitempty" jsonschema_description:"Replacement UI schema for the subtree. Omit to keep the current one."`
}

var ReplaceSubtreeDefinition = define[ReplaceSubtreeInput](
	string(schema.KindReplaceSubtree),
	"Replace a whole subtree, or the entire form when path is empty. Use for large restructurings only; prefer the property tools for small edits.",
)

func (in ReplaceSubtreeInput) operation() schema.EditOperation {
	return schema.ReplaceSubtree{Path: in.Path, Schema: in.Schema, UISchema: in.UISchema}
}
