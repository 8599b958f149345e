package tools

// Registry returns all tool definitions wired for the agent
func Registry() []ToolDefinition {
	return []ToolDefinition{
		AddPropertyDefinition,
		UpdatePropertyDefinition,
		RemovePropertyDefinition,
		ReplaceSubtreeDefinition,
		RequestClarificationDefinition,
	}
}

// Lookup finds a registered tool by name.
func Lookup(name string) (ToolDefinition, bool) {
	for _, d := range Registry() {
		if d.Name == name {
			return d, true
		}
	}
	return ToolDefinition{}, false
}
