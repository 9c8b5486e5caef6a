// Package report renders trade analytics as Telegram HTML messages.
package report

import (
	"fmt"
	"strings"

	"github.com/adiptan/trading-journal/internal/analytics"
	"github.com/adiptan/trading-journal/internal/core"
	"github.com/shopspring/decimal"
)

// NoTradesMessage is the whole weekly report for an empty week.
const NoTradesMessage = "📊 No trades this week"

// Weekly holds the computed inputs of a weekly report
type Weekly struct {
	Overall         analytics.Metrics
	Strategy        analytics.Metrics
	Impulse         analytics.Metrics
	Findings        []analytics.Finding
	Recommendations []string
}

// Composer builds weekly reports
type Composer struct {
	detector *analytics.Detector
}

// NewComposer creates a composer. A nil detector uses the defaults.
func NewComposer(detector *analytics.Detector) *Composer {
	if detector == nil {
		detector = analytics.NewDetector(0, 0)
	}
	return &Composer{detector: detector}
}

// Analyze computes the weekly figures. Trades are sorted chronologically
// first so every pattern check sees the same sequence.
func (c *Composer) Analyze(trades core.Trades) Weekly {
	sorted := trades.SortChronologically()
	w := Weekly{
		Overall:  analytics.ComputeMetrics(sorted),
		Strategy: analytics.ComputeMetrics(sorted, core.CategoryStrategy),
		Impulse:  analytics.ComputeMetrics(sorted, core.CategoryImpulse),
		Findings: c.detector.Detect(sorted),
	}
	w.Recommendations = recommendations(w)
	return w
}

// Weekly renders the weekly report for trades.
func (c *Composer) Weekly(trades core.Trades) string {
	if len(trades) == 0 {
		return NoTradesMessage
	}
	return c.Analyze(trades).Render()
}

func recommendations(w Weekly) []string {
	var recs []string
	if w.Impulse.TotalTrades > w.Strategy.TotalTrades {
		recs = append(recs, "⛔ More impulsive trades than strategy trades!")
	}
	if w.Impulse.TotalPnL.IsNegative() {
		recs = append(recs, fmt.Sprintf("💸 Impulsivity cost you %s USD of profit", Money(w.Impulse.TotalPnL.Abs())))
	}
	if w.Strategy.TotalPnL.IsPositive() && w.Overall.TotalPnL.LessThan(w.Strategy.TotalPnL) {
		recs = append(recs, "✅ The strategy works! The problem is discipline")
	}
	return recs
}

// Render formats the report as Telegram HTML.
func (w Weekly) Render() string {
	var sb strings.Builder

	sb.WriteString("📈 <b>WEEKLY REPORT</b>\n")
	sb.WriteString(strings.Repeat("=", 30) + "\n\n")

	sb.WriteString(fmt.Sprintf("💰 <b>Overall result:</b> %s USD\n", Signed(w.Overall.TotalPnL)))
	sb.WriteString(fmt.Sprintf("📊 Total trades: %d\n", w.Overall.TotalTrades))
	sb.WriteString(fmt.Sprintf("📈 Win Rate: %.1f%%\n\n", w.Overall.WinRate))

	sb.WriteString("🎯 <b>STRATEGY:</b>\n")
	sb.WriteString(fmt.Sprintf("   Trades: %d\n", w.Strategy.TotalTrades))
	sb.WriteString(fmt.Sprintf("   Win Rate: %.1f%%\n", w.Strategy.WinRate))
	sb.WriteString(fmt.Sprintf("   P/L: %s USD\n", Signed(w.Strategy.TotalPnL)))
	sb.WriteString(fmt.Sprintf("   Avg win: %s USD\n", Money(w.Strategy.AvgWin)))
	sb.WriteString(fmt.Sprintf("   Avg loss: %s USD\n\n", Money(w.Strategy.AvgLoss)))

	sb.WriteString("😤 <b>IMPULSIVE:</b>\n")
	sb.WriteString(fmt.Sprintf("   Trades: %d\n", w.Impulse.TotalTrades))
	sb.WriteString(fmt.Sprintf("   Win Rate: %.1f%%\n", w.Impulse.WinRate))
	sb.WriteString(fmt.Sprintf("   P/L: %s USD\n", Signed(w.Impulse.TotalPnL)))

	if len(w.Findings) > 0 {
		sb.WriteString("\n🔍 <b>PATTERNS DETECTED:</b>\n")
		for _, f := range w.Findings {
			sb.WriteString("   " + f.Message + "\n")
		}
	}

	sb.WriteString("\n💡 <b>RECOMMENDATIONS:</b>\n")
	for _, r := range w.Recommendations {
		sb.WriteString("   " + r + "\n")
	}

	return sb.String()
}

// Money formats an amount with two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Signed formats an amount with two decimals and an explicit sign.
func Signed(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s
}
