package schema

// Kind names an edit operation. The values double as tool names.
type Kind string

const (
	KindAddProperty    Kind = "add_property"
	KindUpdateProperty Kind = "update_property"
	KindRemoveProperty Kind = "remove_property"
	KindReplaceSubtree Kind = "replace_subtree"
)

// EditOperation is one of AddProperty, UpdateProperty, RemoveProperty or
// ReplaceSubtree.
type EditOperation interface {
	Kind() Kind
	isEditOperation()
}

// AddProperty inserts (or silently overwrites) Name under the object at Path.
// Path "" is the root.
type AddProperty struct {
	Path      string
	Name      string
	Schema    map[string]any
	Required  bool
	UIOptions map[string]any
}

// UpdateProperty replaces the schema of the property at the full dotted Path.
// A nil Required leaves the required status untouched.
type UpdateProperty struct {
	Path      string
	Schema    map[string]any
	Required  *bool
	UIOptions map[string]any
}

// RemoveProperty deletes the property at Path along with its required entry and
// UI options. Removing an absent property is a no-op.
type RemoveProperty struct {
	Path string
}

// ReplaceSubtree swaps the schema at Path, or the whole document when Path is
// "". UISchema is applied only when non-nil.
type ReplaceSubtree struct {
	Path     string
	Schema   map[string]any
	UISchema map[string]any
}

func (AddProperty) Kind() Kind    { return KindAddProperty }
func (UpdateProperty) Kind() Kind { return KindUpdateProperty }
func (RemoveProperty) Kind() Kind { return KindRemoveProperty }
func (ReplaceSubtree) Kind() Kind { return KindReplaceSubtree }

func (AddProperty) isEditOperation()    {}
func (UpdateProperty) isEditOperation() {}
func (RemoveProperty) isEditOperation() {}
func (ReplaceSubtree) isEditOperation() {}
