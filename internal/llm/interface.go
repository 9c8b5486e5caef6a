// Package llm abstracts the chat models the coach can talk to.
package llm

import "context"

// Chat roles understood by every provider.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultMaxTokens caps a response when the request leaves MaxTokens unset.
const DefaultMaxTokens = 1024

// Provider defines the interface for LLM providers
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest holds the request parameters
type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
	Temperature  float64
	JSONMode     bool
}

// Prompt builds a single-turn request.
func Prompt(system, user string) ChatRequest {
	return ChatRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: RoleUser, Content: user}},
	}
}

// TokenLimit returns MaxTokens or DefaultMaxTokens when unset.
func (r ChatRequest) TokenLimit() int {
	if r.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return r.MaxTokens
}

// Message is one turn of the conversation.
type Message struct {
	Role    string
	Content string
}

// ChatResponse holds the response from the LLM
type ChatResponse struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage tracks token consumption
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total is the sum of input and output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}
