package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/form-agent/internal/provider"
	"github.com/petasbytes/form-agent/internal/runner"
	"github.com/petasbytes/form-agent/session"
	"github.com/petasbytes/form-agent/tools"
)

// scripted replays canned responses and records every request.
type scripted struct {
	steps []provider.Response
	errAt int // 1-based step that fails; 0 never
	reqs  []provider.Request
}

func (s *scripted) Step(ctx context.Context, req provider.Request) (provider.Response, error) {
	s.reqs = append(s.reqs, req)
	n := len(s.reqs)
	if s.errAt == n {
		return provider.Response{}, errors.New("upstream unavailable")
	}
	if n > len(s.steps) {
		return provider.Response{Text: "done"}, nil
	}
	return s.steps[n-1], nil
}

func call(id, name, input string) provider.ToolCall {
	return provider.ToolCall{ID: id, Name: name, Input: json.RawMessage(input)}
}

func TestRunTurn_AppliesToolCallsInOrder(t *testing.T) {
	model := &scripted{steps: []provider.Response{
		{ToolCalls: []provider.ToolCall{
			call("1", "add_property", `{"name":"address","schema":{"type":"object","properties":{}}}`),
			call("2", "add_property", `{"path":"address","name":"street","schema":{"type":"string"},"required":true}`),
		}},
		{Text: "Added an address with a street."},
	}}
	r := runner.New(model, tools.Registry())

	res, err := r.RunTurn(context.Background(), session.New("en"), "add an address")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Session.SchemaState.Version != 2 {
		t.Fatalf("version: got %d want 2", res.Session.SchemaState.Version)
	}
	if len(res.Tools) != 2 || !res.Tools[0].OK || !res.Tools[1].OK || res.Tools[1].Version != 2 {
		t.Fatalf("tool outcomes: %+v", res.Tools)
	}
	if res.Text != "Added an address with a street." || res.Steps != 2 {
		t.Fatalf("text=%q steps=%d", res.Text, res.Steps)
	}

	// second request carries the tool pair and the updated document
	second := model.reqs[1]
	if n := len(second.Messages); n != 3 {
		t.Fatalf("expected user, tool_use, tool_result; got %d messages", n)
	}
	results := second.Messages[2].ToolResults
	if len(results) != 2 || results[0].CallID != "1" || results[1].Content != "Applied add_property successfully." {
		t.Fatalf("tool results: %+v", results)
	}
	if !strings.Contains(second.System, `<current_schema version="2">`) {
		t.Fatal("system prompt should embed the live document")
	}

	msgs := res.Session.Messages
	if len(msgs) != 2 || msgs[0].Role != "user" || msgs[1].Content != res.Text {
		t.Fatalf("messages: %+v", msgs)
	}
}

func TestRunTurn_ClarificationStopsTurn(t *testing.T) {
	model := &scripted{steps: []provider.Response{
		{Text: "Let me ask.", ToolCalls: []provider.ToolCall{
			call("1", "request_clarification", `{"question":"Dropdown or radio?","options":["dropdown","radio"]}`),
			call("2", "add_property", `{"name":"choice","schema":{"type":"string"}}`),
		}},
		{Text: "should never be requested"},
	}}
	r := runner.New(model, tools.Registry())

	res, err := r.RunTurn(context.Background(), session.New("en"), "add a choice")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(model.reqs) != 1 {
		t.Fatalf("turn should stop after clarification; got %d model calls", len(model.reqs))
	}
	if res.Session.PendingClarification == nil || res.Session.PendingClarification.Question != "Dropdown or radio?" {
		t.Fatalf("clarification not pending: %+v", res.Session.PendingClarification)
	}
	if !res.Tools[1].Skipped || res.Session.SchemaState.Version != 0 {
		t.Fatalf("later call should be skipped: %+v v%d", res.Tools[1], res.Session.SchemaState.Version)
	}

	// the next turn clears the clarification and runs tools again
	model2 := &scripted{steps: []provider.Response{
		{ToolCalls: []provider.ToolCall{call("3", "add_property", `{"name":"choice","schema":{"type":"string","enum":["a","b"]}}`)}},
	}}
	r.Model = model2
	next, err := r.RunTurn(context.Background(), res.Session, "dropdown")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if next.Session.PendingClarification != nil || next.Session.SchemaState.Version != 1 {
		t.Fatalf("unexpected follow-up state: %+v", next.Session)
	}
	if first := model2.reqs[0].Messages; len(first) != 3 || first[0].Text != "add a choice" {
		t.Fatalf("history not replayed: %+v", first)
	}
}

func TestRunTurn_ModelErrorKeepsCommittedEdits(t *testing.T) {
	model := &scripted{
		steps: []provider.Response{{ToolCalls: []provider.ToolCall{call("1", "add_property", `{"name":"a","schema":{"type":"string"}}`)}}},
		errAt: 2,
	}
	r := runner.New(model, tools.Registry())

	res, err := r.RunTurn(context.Background(), session.New("en"), "add a")
	if err == nil || !strings.Contains(err.Error(), "upstream unavailable") {
		t.Fatalf("expected step error, got %v", err)
	}
	if res.Session.SchemaState.Version != 1 {
		t.Fatalf("committed edit lost: v%d", res.Session.SchemaState.Version)
	}
	if len(res.Session.Messages) != 1 || res.Session.Messages[0].Content != "add a" {
		t.Fatalf("user message should be recorded: %+v", res.Session.Messages)
	}
}

func TestRunTurn_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	model := &scripted{}
	res, err := runner.New(model, tools.Registry()).RunTurn(ctx, session.New("en"), "hi")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(model.reqs) != 0 || res.Steps != 0 {
		t.Fatal("no model call expected")
	}
}

func TestRunTurn_MaxSteps(t *testing.T) {
	loop := provider.Response{ToolCalls: []provider.ToolCall{call("x", "remove_property", `{"path":"ghost"}`)}}
	model := &scripted{steps: []provider.Response{loop, loop, loop, loop}}
	r := runner.New(model, tools.Registry())
	r.MaxSteps = 3

	res, err := r.RunTurn(context.Background(), session.New("en"), "loop")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Steps != 3 || len(model.reqs) != 3 {
		t.Fatalf("steps: got %d (%d requests) want 3", res.Steps, len(model.reqs))
	}
}

func TestRunTurn_ToolFailuresBecomeErrorResults(t *testing.T) {
	model := &scripted{steps: []provider.Response{{ToolCalls: []provider.ToolCall{
		call("1", "add_property", `{"name":"a","schema":{"type":"strin"}}`),
		call("2", "read_file", `{"path":"x"}`),
		call("3", "add_property", `{not json`),
	}}}}
	r := runner.New(model, tools.Registry())

	res, err := r.RunTurn(context.Background(), session.New("en"), "break things")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Session.SchemaState.Version != 0 {
		t.Fatalf("failed calls must not bump the version: v%d", res.Session.SchemaState.Version)
	}
	results := model.reqs[1].Messages[2].ToolResults
	if len(results) != 3 {
		t.Fatalf("expected 3 tool results, got %d", len(results))
	}
	for i, want := range []string{"Schema validation failed: ", "Unknown tool: read_file", "Invalid arguments for add_property: malformed JSON"} {
		if !results[i].IsError || !strings.HasPrefix(results[i].Content, want) {
			t.Errorf("result %d: %+v (want prefix %q)", i, results[i], want)
		}
	}
}

// sequenceTransport answers successive requests with successive bodies.
type sequenceTransport struct {
	mu     sync.Mutex
	bodies []string
	reqs   [][]byte
}

func (f *sequenceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, b)
	body := `{"content":[],"role":"assistant"}`
	if i := len(f.reqs) - 1; i < len(f.bodies) {
		body = f.bodies[i]
	}
	resp := &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func TestRunTurn_AnthropicRoundTrip(t *testing.T) {
	fake := &sequenceTransport{bodies: []string{
		`{"role":"assistant","stop_reason":"tool_use","content":[{"type":"tool_use","id":"t1","name":"add_property","input":{"name":"email","schema":{"type":"string","format":"email"},"required":true}}]}`,
		`{"role":"assistant","stop_reason":"end_turn","content":[{"type":"text","text":"Added email."}]}`,
	}}
	cli := provider.NewAnthropicClient("test-key", option.WithHTTPClient(&http.Client{Transport: fake}))
	r := runner.New(provider.NewAnthropicModel(cli, "", 0), tools.Registry())

	res, err := r.RunTurn(context.Background(), session.New("de"), "E-Mail Pflichtfeld")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Text != "Added email." || res.Session.SchemaState.Version != 1 {
		t.Fatalf("unexpected result: text=%q v%d", res.Text, res.Session.SchemaState.Version)
	}
	if len(fake.reqs) != 2 {
		t.Fatalf("expected 2 HTTP calls, got %d", len(fake.reqs))
	}

	var body struct {
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type      string `json:"type"`
				ToolUseID string `json:"tool_use_id,omitempty"`
				IsError   bool   `json:"is_error,omitempty"`
			} `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(fake.reqs[1], &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	last := body.Messages[len(body.Messages)-1]
	if last.Role != "user" || last.Content[0].Type != "tool_result" || last.Content[0].ToolUseID != "t1" || last.Content[0].IsError {
		t.Fatalf("unexpected tool_result message: %+v", last)
	}
}
