package telemetry

import (
	"context"
	"time"
)

// ToolExec records one routed tool call. The error string is a coarse class,
// never the raw payload.
func ToolExec(ctx context.Context, tool string, d time.Duration, inputSize int, version int, errClass string) {
	turnID, _ := TurnIDFromContext(ctx)
	fields := map[string]any{
		"turn_id":     turnID,
		"tool_name":   tool,
		"duration_ms": d.Milliseconds(),
		"input_size":  inputSize,
		"version":     version,
		"error":       nil,
	}
	if errClass != "" {
		fields["error"] = errClass
	}
	Emit("tool_exec", fields)
}

// TurnFinished records the end of an agent turn.
func TurnFinished(ctx context.Context, sessionID string, steps, toolCalls, version int, clarification bool) {
	turnID, _ := TurnIDFromContext(ctx)
	Emit("turn_finished", map[string]any{
		"turn_id":       turnID,
		"session_id":    sessionID,
		"steps":         steps,
		"tool_calls":    toolCalls,
		"version":       version,
		"clarification": clarification,
	})
}
