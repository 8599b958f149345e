package provider

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/valyala/fastjson"
)

// DefaultOllamaBaseURL is Ollama's OpenAI-compatible endpoint.
const DefaultOllamaBaseURL = "http://localhost:11434/v1"

const DefaultOpenAIModel = "llama3.1"

var errNoChoices = errors.New("openai: response has no choices")

// NewOpenAIClient returns a client for baseURL. Ollama ignores the key, so an
// empty one is fine there.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return openai.NewClientWithConfig(cfg)
}

type OpenAIModel struct {
	Client    *openai.Client
	Model     string
	MaxTokens int64
}

func NewOpenAIModel(client *openai.Client, model string, maxTokens int64) *OpenAIModel {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIModel{Client: client, Model: model, MaxTokens: maxTokens}
}

func (m *OpenAIModel) Step(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = m.MaxTokens
	}
	creq := openai.ChatCompletionRequest{
		Model:    m.Model,
		Messages: openAIMessages(req.System, req.Messages),
	}
	if maxTokens > 0 {
		creq.MaxTokens = int(maxTokens)
	}
	for _, t := range req.Tools {
		creq.Tools = append(creq.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}

	resp, err := m.Client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return Response{}, err
	}
	if len(resp.Choices) == 0 {
		return Response{}, errNoChoices
	}
	choice := resp.Choices[0]
	out := Response{Text: choice.Message.Content, StopReason: string(choice.FinishReason)}
	for _, c := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:    c.ID,
			Name:  c.Function.Name,
			Input: arguments(c.Function.Arguments),
		})
	}
	return out, nil
}

// arguments turns the argument string of a function call into a raw object.
// Some local models send "" for calls without arguments. Anything that is not
// a JSON object is passed through so the router reports it.
func arguments(s string) json.RawMessage {
	s = strings.TrimSpace(s)
	if s == "" {
		return json.RawMessage(`{}`)
	}
	var p fastjson.Parser
	v, err := p.Parse(s)
	if err == nil && v.Type() == fastjson.TypeNull {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(s)
}

func openAIMessages(system string, msgs []Message) []openai.ChatCompletionMessage {
	var out []openai.ChatCompletionMessage
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, m := range msgs {
		switch {
		case len(m.ToolResults) > 0:
			for _, r := range m.ToolResults {
				out = append(out, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    r.Content,
					ToolCallID: r.CallID,
				})
			}
			if m.Text != "" {
				out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: m.Text})
			}
		case m.Role == RoleAssistant:
			msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Text}
			for _, c := range m.ToolCalls {
				args := string(c.Input)
				if args == "" {
					args = "{}"
				}
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					Type: openai.ToolTypeFunction,
					ID:   c.ID,
					Function: openai.FunctionCall{
						Name:      c.Name,
						Arguments: args,
					},
				})
			}
			out = append(out, msg)
		default:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: m.Text})
		}
	}
	return out
}
