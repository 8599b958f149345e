// Package runner drives one agent turn: model step, tool dispatch through the
// router, tool results back to the model, until the model stops calling tools.
//
// Invariants:
//   - tool_use and the corresponding tool_result are kept adjacent within a turn.
//   - tool calls run in order; each sees the document left by the previous one.
//   - the session is threaded explicitly; committed edits survive a failed step.
//
// Flow:
//
//	user(text) -> assistant(tool_use) -> user(tool_result) -> assistant(text)
package runner
