// internal/llm/factory/factory.go
package factory

import (
	"fmt"
	"strings"

	"github.com/adiptan/trading-journal/internal/config"
	"github.com/adiptan/trading-journal/internal/core"
	"github.com/adiptan/trading-journal/internal/llm"
	"github.com/adiptan/trading-journal/internal/llm/claude"
	"github.com/adiptan/trading-journal/internal/llm/openai"
)

// New creates the coach's LLM provider. "anthropic" is accepted as an alias
// for claude.
func New(cfg config.LLMConfig) (llm.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "":
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("llm.provider is not set"))
	case "claude", "anthropic":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown LLM provider: %s", cfg.Provider))
	}
}
