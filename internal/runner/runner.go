package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/petasbytes/form-agent/internal/prompt"
	"github.com/petasbytes/form-agent/internal/provider"
	"github.com/petasbytes/form-agent/internal/telemetry"
	"github.com/petasbytes/form-agent/session"
	"github.com/petasbytes/form-agent/tools"
)

// DefaultMaxSteps bounds the model round trips of one turn.
const DefaultMaxSteps = 8

type Runner struct {
	Model     provider.Model
	Tools     []tools.ToolDefinition
	MaxSteps  int
	MaxTokens int64
	Logger    *slog.Logger
}

func New(model provider.Model, toolDefs []tools.ToolDefinition) *Runner {
	return &Runner{Model: model, Tools: toolDefs, MaxSteps: DefaultMaxSteps}
}

// ToolOutcome summarises one routed tool call for the caller.
type ToolOutcome struct {
	ID      string `json:"id"`
	Name    string `json:"toolName"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Version int    `json:"version"`
}

type TurnResult struct {
	Session session.Session
	Text    string
	Tools   []ToolOutcome
	Steps   int
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) maxSteps() int {
	if r.MaxSteps > 0 {
		return r.MaxSteps
	}
	return DefaultMaxSteps
}

// RunTurn answers userText on sess. The user's text also answers any pending
// clarification, which is cleared first. On error the returned result still
// carries the session with every edit committed before the failure.
func (r *Runner) RunTurn(ctx context.Context, sess session.Session, userText string) (TurnResult, error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	log := r.logger().With("session", sess.ID, "turn", turnID)

	sess = sess.ClearClarification()
	conv := history(sess.Messages)
	conv = append(conv, provider.Message{Role: provider.RoleUser, Text: userText})

	res := TurnResult{}
	turn := tools.NewTurn()
	turn.Logger = log
	var texts []string

	finish := func(err error) (TurnResult, error) {
		reply := strings.TrimSpace(strings.Join(texts, "\n\n"))
		msgs := []session.Message{{Role: provider.RoleUser, Content: userText}}
		if reply != "" {
			msgs = append(msgs, session.Message{Role: provider.RoleAssistant, Content: reply})
		}
		sess = sess.AppendMessages(msgs...)
		res.Session = sess
		res.Text = reply
		telemetry.TurnFinished(ctx, sess.ID, res.Steps, len(res.Tools), sess.SchemaState.Version, sess.PendingClarification != nil)
		return res, err
	}

	for res.Steps < r.maxSteps() {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		system, err := prompt.Build(sess.SchemaState, sess.Language)
		if err != nil {
			return finish(err)
		}
		res.Steps++
		step, err := r.Model.Step(ctx, provider.Request{
			System:    system,
			Messages:  conv,
			Tools:     r.Tools,
			MaxTokens: r.MaxTokens,
		})
		if err != nil {
			log.Error("model step failed", "step", res.Steps, "error", err)
			return finish(fmt.Errorf("model step %d: %w", res.Steps, err))
		}
		if step.Text != "" {
			texts = append(texts, step.Text)
		}
		if len(step.ToolCalls) == 0 {
			break
		}

		conv = append(conv, provider.Message{Role: provider.RoleAssistant, Text: step.Text, ToolCalls: step.ToolCalls})
		results := make([]provider.ToolResult, 0, len(step.ToolCalls))
		for _, call := range step.ToolCalls {
			var out ToolOutcome
			var tr provider.ToolResult
			sess, out, tr = r.execTool(ctx, turn, sess, call)
			res.Tools = append(res.Tools, out)
			results = append(results, tr)
		}
		conv = append(conv, provider.Message{Role: provider.RoleUser, ToolResults: results})

		if turn.Waiting() {
			log.Info("clarification requested; turn stops")
			break
		}
	}
	return finish(nil)
}

func (r *Runner) execTool(ctx context.Context, turn *tools.Turn, sess session.Session, call provider.ToolCall) (session.Session, ToolOutcome, provider.ToolResult) {
	start := time.Now()
	out := ToolOutcome{ID: call.ID, Name: call.Name}

	var args map[string]any
	if err := json.Unmarshal(call.Input, &args); err != nil {
		out.Error = fmt.Sprintf("Invalid arguments for %s: malformed JSON: %v", call.Name, err)
		out.Version = sess.SchemaState.Version
		telemetry.ToolExec(ctx, call.Name, time.Since(start), len(call.Input), out.Version, "tool error")
		return sess, out, provider.ToolResult{CallID: call.ID, Content: out.Error, IsError: true}
	}

	res := turn.Execute(call.Name, args, sess)
	out.OK, out.Message, out.Error, out.Skipped = res.OK, res.Message, res.Error, res.Skipped
	out.Version = res.Session.SchemaState.Version

	errClass := ""
	if !res.OK {
		// Generic class only; the raw error may echo the payload
		errClass = "tool error"
		if _, known := tools.Lookup(call.Name); !known {
			errClass = "tool not found"
		}
	}
	telemetry.ToolExec(ctx, call.Name, time.Since(start), len(call.Input), out.Version, errClass)
	r.logger().Debug("tool call", "tool", call.Name, "ok", res.OK, "skipped", res.Skipped, "version", out.Version)

	if !res.OK {
		return res.Session, out, provider.ToolResult{CallID: call.ID, Content: res.Error, IsError: true}
	}
	return res.Session, out, provider.ToolResult{CallID: call.ID, Content: res.Message}
}

func history(msgs []session.Message) []provider.Message {
	out := make([]provider.Message, 0, len(msgs)+1)
	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		out = append(out, provider.Message{Role: m.Role, Text: m.Content})
	}
	return out
}
