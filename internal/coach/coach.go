// Package coach asks an LLM for short commentary on a weekly report.
package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/adiptan/trading-journal/internal/analytics"
	"github.com/adiptan/trading-journal/internal/llm"
	"github.com/adiptan/trading-journal/internal/report"
	"go.uber.org/zap"
)

// Config holds coach request settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// Advice is the parsed LLM answer.
type Advice struct {
	Summary string   `json:"summary"`
	Tips    []string `json:"tips"`
}

// Coach turns weekly figures into advice.
type Coach struct {
	llm    llm.Provider
	cfg    Config
	logger *zap.Logger
}

// New creates a coach backed by provider.
func New(provider llm.Provider, cfg Config, logger *zap.Logger) *Coach {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 600
	}
	return &Coach{llm: provider, cfg: cfg, logger: logger}
}

// Advise asks the LLM about w. Answers that are not the requested JSON are
// kept as a plain summary.
func (c *Coach) Advise(ctx context.Context, w report.Weekly) (*Advice, error) {
	if w.Overall.TotalTrades == 0 {
		return nil, fmt.Errorf("no trades to analyze")
	}

	req := llm.Prompt(systemPrompt, buildPrompt(w))
	req.MaxTokens = c.cfg.MaxTokens
	req.Temperature = c.cfg.Temperature
	req.JSONMode = true

	resp, err := c.llm.Chat(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM error: %w", err)
	}

	c.logger.Debug("coach response",
		zap.String("provider", c.llm.Name()),
		zap.Int("tokens", resp.Usage.Total()),
	)

	content := strings.TrimSpace(resp.Content)
	var advice Advice
	if err := json.Unmarshal([]byte(stripFence(content)), &advice); err != nil || advice.Summary == "" {
		return &Advice{Summary: content}, nil
	}
	return &advice, nil
}

// Comment returns the rendered coach block for w, or "" when the LLM fails.
func (c *Coach) Comment(ctx context.Context, w report.Weekly) string {
	advice, err := c.Advise(ctx, w)
	if err != nil {
		c.logger.Warn("coach commentary unavailable", zap.Error(err))
		return ""
	}
	return advice.Render()
}

// Render formats the advice as Telegram HTML. LLM text is escaped.
func (a *Advice) Render() string {
	if a == nil || a.Summary == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("🧠 <b>COACH</b>\n")
	sb.WriteString(html.EscapeString(a.Summary))
	sb.WriteString("\n")
	for _, tip := range a.Tips {
		if tip = strings.TrimSpace(tip); tip != "" {
			sb.WriteString("• " + html.EscapeString(tip) + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func buildPrompt(w report.Weekly) string {
	var sb strings.Builder

	sb.WriteString("## Week Summary:\n")
	writeMetrics(&sb, "All trades", w.Overall)
	writeMetrics(&sb, "Strategy trades", w.Strategy)
	writeMetrics(&sb, "Impulsive trades", w.Impulse)
	sb.WriteString("\n")

	if len(w.Findings) > 0 {
		sb.WriteString("## Behavioral Patterns:\n")
		for _, f := range w.Findings {
			sb.WriteString(fmt.Sprintf("- %s: %.0f\n", f.Kind, f.Value))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Task:\n")
	sb.WriteString("Give the trader a short, direct assessment of the week and at most three concrete tips.\n")
	sb.WriteString("Respond with JSON containing: summary, tips.\n")
	return sb.String()
}

func writeMetrics(sb *strings.Builder, label string, m analytics.Metrics) {
	sb.WriteString(fmt.Sprintf("- %s: %d trades, win rate %.1f%%, P/L %s USD, avg win %s, avg loss %s, profit factor %.2f\n",
		label, m.TotalTrades, m.WinRate, report.Signed(m.TotalPnL),
		report.Money(m.AvgWin), report.Money(m.AvgLoss), m.ProfitFactor))
}

// stripFence removes a ```json fence some models wrap around JSON.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

const systemPrompt = `You are a trading discipline coach reviewing a trader's personal journal.

Trades are split into strategy trades (following the trader's plan) and impulsive trades (FOMO, revenge, boredom).
Focus on:
1. Whether impulsive trades are costing money compared to strategy trades
2. Behavioral patterns such as late-night trading, losing streaks and revenge trading
3. One or two habits to change next week

Always respond with valid JSON:
{
  "summary": "two or three sentences",
  "tips": ["short actionable tip", "..."]
}

Be specific and refer to the numbers. Do not give financial advice about which assets to trade.`
