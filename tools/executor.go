package tools

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/petasbytes/form-agent/internal/schemapath"
	"github.com/petasbytes/form-agent/internal/validate"
	"github.com/petasbytes/form-agent/schema"
	"github.com/petasbytes/form-agent/session"
)

// ErrUnknownTool is reported for tool names outside the registry.
var ErrUnknownTool = errors.New("unknown tool")

// WaitingMessage answers tool calls that arrive after a clarification was
// requested in the same turn.
const WaitingMessage = "Waiting for the user to answer the pending clarification; tool call skipped."

// Result is the outcome of one tool call. Session is always set: the updated
// session on success, the unchanged input otherwise.
type Result struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Session session.Session `json:"-"`
	// Changes is the primitive edit log of a successful schema edit.
	Changes []schema.Change `json:"changes,omitempty"`
	// Skipped marks calls short-circuited by the clarification gate.
	Skipped bool `json:"skipped,omitempty"`
}

// Err returns the failure as an error, or nil.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	return errors.New(r.Error)
}

func fail(sess session.Session, msg string) Result {
	return Result{OK: false, Error: msg, Session: sess}
}

// ExecuteToolCall routes a named tool call to the schema engine. Every
// failure is returned as data; sess is never modified. Rejections are logged
// to slog.Default; use a Turn with a Logger to choose another logger.
func ExecuteToolCall(name string, args map[string]any, sess session.Session) Result {
	return execute(slog.Default(), name, args, sess)
}

func execute(log *slog.Logger, name string, args map[string]any, sess session.Session) Result {
	def, ok := Lookup(name)
	if !ok {
		log.Warn("tool rejected", "tool", name, "error", ErrUnknownTool)
		return fail(sess, fmt.Sprintf("Unknown tool: %s", name))
	}

	in, err := def.Parse(normalizeArgs(args))
	if err != nil {
		log.Warn("tool arguments rejected", "tool", name, "error", err)
		return fail(sess, invalidArgs(name, err))
	}

	if c, ok := in.(RequestClarificationInput); ok {
		next := sess.WithClarification(c.clarification())
		return Result{OK: true, Message: "Clarification requested.", Session: next}
	}

	edit, ok := in.(interface{ operation() schema.EditOperation })
	if !ok {
		return fail(sess, fmt.Sprintf("Unknown tool: %s", name))
	}
	res, err := schema.Apply(sess.SchemaState, edit.operation())
	if err != nil {
		log.Warn("patch failed", "tool", name, "error", err)
		return fail(sess, err.Error())
	}

	doc := res.Document
	doc.Version = sess.SchemaState.Version + 1
	return Result{
		OK:      true,
		Message: fmt.Sprintf("Applied %s successfully.", name),
		Session: sess.WithDocument(doc),
		Changes: res.Changes,
	}
}

func invalidArgs(name string, err error) string {
	if iss, ok := validate.AsIssues(err); ok {
		return fmt.Sprintf("Invalid arguments for %s: %s", name, iss.Error())
	}
	return fmt.Sprintf("Invalid arguments for %s: %v", name, err)
}

// argAliases maps alternative argument names models commonly emit to the
// canonical ones. The canonical name wins when both are present.
var argAliases = map[string]string{
	"uiSchemaOptions": "uiOptions",
	"scope":           "path",
	"parentScope":     "path",
}

// normalizeArgs returns a shallow copy of args with aliases resolved, null
// values dropped and JSON Forms scopes rewritten to dotted paths.
func normalizeArgs(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		if v == nil {
			continue
		}
		out[k] = v
	}
	for alias, canonical := range argAliases {
		v, ok := out[alias]
		if !ok {
			continue
		}
		delete(out, alias)
		if _, taken := out[canonical]; !taken {
			out[canonical] = v
		}
	}
	if p, ok := out["path"].(string); ok {
		out["path"] = schemapath.Normalize(p)
	}
	return out
}

// Turn gates the tool calls of one conversational turn. Once a clarification
// has been requested, later calls in the same turn are skipped. Use a new Turn
// per user message.
type Turn struct {
	// Logger receives rejected calls; nil means slog.Default.
	Logger *slog.Logger

	waiting bool
}

func NewTurn() *Turn { return &Turn{} }

// Waiting reports whether a clarification was requested in this turn.
func (t *Turn) Waiting() bool { return t.waiting }

func (t *Turn) Execute(name string, args map[string]any, sess session.Session) Result {
	if t.waiting {
		return Result{OK: true, Message: WaitingMessage, Session: sess, Skipped: true}
	}
	log := t.Logger
	if log == nil {
		log = slog.Default()
	}
	res := execute(log, name, args, sess)
	if res.OK && name == RequestClarificationName {
		t.waiting = true
	}
	return res
}
