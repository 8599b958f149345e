// Package provider puts the LLM backends behind one Model interface.
//
// Supported backends:
//   - anthropic: the Messages API through anthropic-sdk-go.
//   - ollama / openai: any OpenAI-compatible chat completions endpoint.
package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/form-agent/tools"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolCall is a tool invocation requested by the model. Input is the raw
// argument object.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResult answers the ToolCall with the same ID.
type ToolResult struct {
	CallID  string
	Content string
	IsError bool
}

// Message is one entry of the provider-neutral transcript. An assistant
// message may carry ToolCalls; the user message that follows it carries the
// matching ToolResults.
type Message struct {
	Role        string
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

type Request struct {
	System    string
	Messages  []Message
	Tools     []tools.ToolDefinition
	MaxTokens int64
}

// Response is one model step.
type Response struct {
	Text       string
	ToolCalls  []ToolCall
	StopReason string
}

// Model runs a single request/response exchange.
type Model interface {
	Step(ctx context.Context, req Request) (Response, error)
}

// Config selects and parameterises a backend.
type Config struct {
	Provider        string
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIBaseURL   string
	OpenAIModel     string
	OpenAIAPIKey    string
	MaxTokens       int64
}

// New builds the Model named by cfg.Provider.
func New(cfg Config) (Model, error) {
	switch cfg.Provider {
	case "", "anthropic":
		return NewAnthropicModel(NewAnthropicClient(cfg.AnthropicAPIKey), cfg.AnthropicModel, cfg.MaxTokens), nil
	case "ollama", "openai":
		base := cfg.OpenAIBaseURL
		if base == "" && cfg.Provider == "ollama" {
			base = DefaultOllamaBaseURL
		}
		return NewOpenAIModel(NewOpenAIClient(cfg.OpenAIAPIKey, base), cfg.OpenAIModel, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
