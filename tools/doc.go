// Package tools defines the form-editing tool contracts and routes tool calls
// to the schema engine.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, argument checker.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Edit tools: add_property, update_property, remove_property, replace_subtree.
//   - request_clarification: stores a question on the session, no document change.
//   - ExecuteToolCall and Turn: the router and the per-turn clarification gate.
package tools
