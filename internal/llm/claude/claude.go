// internal/llm/claude/claude.go
package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/adiptan/trading-journal/internal/core"
	"github.com/adiptan/trading-journal/internal/llm"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// jsonInstruction is appended to the system prompt for JSONMode requests;
// the Messages API has no response format switch.
const jsonInstruction = "Respond with a single JSON object and nothing else."

// Provider implements the LLM interface for Claude/Anthropic.
type Provider struct {
	client anthropic.Client
	model  string
}

// New creates a new Claude provider. Extra request options (base URL,
// HTTP client) are passed to the SDK.
func New(apiKey, model string, opts ...option.RequestOption) (*Provider, error) {
	if apiKey == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("claude: API key required"))
	}
	if model == "" {
		model = DefaultModel
	}
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Provider{client: client, model: model}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "claude"
}

// Chat sends a chat request to the Claude API.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	messages := make([]anthropic.MessageParam, len(req.Messages))
	for i, m := range req.Messages {
		if m.Role == llm.RoleUser {
			messages[i] = anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content))
		} else {
			messages[i] = anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(req.TokenLimit()),
		Messages:  messages,
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	if system := systemPrompt(req); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, core.WrapError(core.ErrLLMFailed, fmt.Errorf("claude API error: %w", err))
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return &llm.ChatResponse{
		Content: sb.String(),
		Usage: llm.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
		FinishReason: string(resp.StopReason),
	}, nil
}

func systemPrompt(req llm.ChatRequest) string {
	if !req.JSONMode {
		return req.SystemPrompt
	}
	if req.SystemPrompt == "" {
		return jsonInstruction
	}
	return req.SystemPrompt + "\n\n" + jsonInstruction
}
