// Package llm holds the narrow boundary to the external text-generation
// service: a minimal chat Client interface, an OpenAI-compatible
// implementation, tolerant JSON extraction for model output, a circuit
// breaker wrapper, and the TreeNavigator that performs the one
// reasoning call of the tree retrieval strategy.
package llm

import "context"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the model's reply to a chat request.
type Response struct {
	Content      string `json:"content"`
	Model        string `json:"model,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// Client is the minimal chat interface the retrieval engine depends on.
// Tests inject fakes; production wiring uses the OpenAI-compatible
// client, optionally wrapped in a circuit breaker.
type Client interface {
	Chat(ctx context.Context, messages []Message) (*Response, error)
}

// Config configures an OpenAI-compatible client. BaseURL may point at
// any compatible endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}
