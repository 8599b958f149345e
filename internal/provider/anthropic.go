package provider

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultModel = anthropic.ModelClaude3_7SonnetLatest
const APIVersion = "2023-06-01"

// DefaultMaxTokens caps a single model step.
const DefaultMaxTokens int64 = 1024

// NewAnthropicClient returns a client using apiKey, or ANTHROPIC_API_KEY from
// the env when apiKey is empty.
func NewAnthropicClient(apiKey string, opts ...option.RequestOption) *anthropic.Client {
	if apiKey != "" {
		opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	}
	c := anthropic.NewClient(opts...)
	return &c
}

type AnthropicModel struct {
	Client    *anthropic.Client
	Model     anthropic.Model
	MaxTokens int64
}

func NewAnthropicModel(client *anthropic.Client, model string, maxTokens int64) *AnthropicModel {
	m := anthropic.Model(model)
	if model == "" {
		m = DefaultModel
	}
	return &AnthropicModel{Client: client, Model: m, MaxTokens: maxTokens}
}

func (m *AnthropicModel) Step(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = m.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     m.Model,
		MaxTokens: maxTokens,
		Messages:  anthropicMessages(req.Messages),
		Tools:     anthropicTools(req),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := m.Client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, err
	}
	out := Response{StopReason: string(msg.StopReason)}
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.Text += v.Text
		case anthropic.ToolUseBlock:
			// Pass raw JSON input through to the router
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:    v.ID,
				Name:  v.Name,
				Input: json.RawMessage(v.JSON.Input.Raw()),
			})
		}
	}
	return out, nil
}

func anthropicTools(req Request) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(req.Tools))
	for _, t := range req.Tools {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: t.AnthropicParam(),
		}})
	}
	return out
}

// anthropicMessages keeps each tool_use block and its tool_result adjacent:
// an assistant message with calls is followed by one user message holding
// all results.
func anthropicMessages(msgs []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		var blocks []anthropic.ContentBlockParamUnion
		if m.Text != "" {
			blocks = append(blocks, anthropic.NewTextBlock(m.Text))
		}
		for _, c := range m.ToolCalls {
			input := c.Input
			if len(input) == 0 {
				input = json.RawMessage(`{}`)
			}
			blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
				ID:    c.ID,
				Name:  c.Name,
				Input: input,
			}})
		}
		for _, r := range m.ToolResults {
			blocks = append(blocks, anthropic.NewToolResultBlock(r.CallID, r.Content, r.IsError))
		}
		if len(blocks) == 0 {
			continue
		}
		if m.Role == RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out
}
