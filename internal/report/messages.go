package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/adiptan/trading-journal/internal/analytics"
	"github.com/adiptan/trading-journal/internal/core"
)

// NoTradesYetMessage answers a recent-trades query on an empty journal.
const NoTradesYetMessage = "📊 No trades yet"

// Today renders the on-demand summary of the current day.
func Today(s core.DaySummary) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>Today:</b>\n\n")
	sb.WriteString(fmt.Sprintf("Trades: %d\n", s.Count))
	sb.WriteString(fmt.Sprintf("P/L: %s USD\n\n", Signed(s.TotalPnL)))
	sb.WriteString(fmt.Sprintf("🎯 Strategy: %d\n", s.StrategyCount))
	sb.WriteString(fmt.Sprintf("😤 Impulsive: %d\n", s.ImpulseCount))

	if s.ImpulseCount > s.StrategyCount && s.ImpulseCount > 0 {
		sb.WriteString("\n⚠️ <b>Attention!</b> More impulsive trades than strategy trades!")
	}
	return sb.String()
}

// Daily renders the scheduled end-of-day summary. Warnings come from the
// alert rules that fired for the day.
func Daily(s core.DaySummary, warnings []string) string {
	var sb strings.Builder
	sb.WriteString("🌙 <b>Daily recap:</b>\n\n")
	sb.WriteString(fmt.Sprintf("Trades: %d\n", s.Count))
	sb.WriteString(fmt.Sprintf("P/L: %s USD\n\n", Signed(s.TotalPnL)))
	sb.WriteString(fmt.Sprintf("🎯 Strategy: %d\n", s.StrategyCount))
	sb.WriteString(fmt.Sprintf("😤 Impulsive: %d\n", s.ImpulseCount))
	for _, w := range warnings {
		sb.WriteString("\n" + w + "\n")
	}
	return sb.String()
}

// WeekBrief renders the short weekly statistics.
func WeekBrief(trades core.Trades) string {
	if len(trades) == 0 {
		return NoTradesMessage
	}
	m := analytics.ComputeMetrics(trades)

	var sb strings.Builder
	sb.WriteString("📊 <b>Week:</b>\n\n")
	sb.WriteString(fmt.Sprintf("Trades: %d\n", m.TotalTrades))
	sb.WriteString(fmt.Sprintf("P/L: %s USD\n", Signed(m.TotalPnL)))
	sb.WriteString(fmt.Sprintf("Win Rate: %.1f%%\n", m.WinRate))
	sb.WriteString(fmt.Sprintf("Profit Factor: %.2f\n\n", m.ProfitFactor))
	sb.WriteString("Use /report for the full report")
	return sb.String()
}

// Recent renders a newest-first list of trades.
func Recent(trades core.Trades) string {
	if len(trades) == 0 {
		return NoTradesYetMessage
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 <b>Last %d trades:</b>\n\n", len(trades)))
	for i, t := range trades {
		pnlEmoji := "📉"
		if t.IsWin() {
			pnlEmoji = "📈"
		}
		catEmoji := "😤"
		if t.Category == core.CategoryStrategy {
			catEmoji = "🎯"
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s %s <i>#%d</i>\n", i+1, pnlEmoji, html.EscapeString(t.Pair), t.Direction, t.ID))
		sb.WriteString(fmt.Sprintf("   %s %s USD (%s)\n", catEmoji, Signed(t.PnLUSD), t.Category))
		sb.WriteString(fmt.Sprintf("   %s\n\n", t.ExecutedAt.Format(time.DateTime)))
	}
	return sb.String()
}

// Recorded renders the confirmation sent after a trade is saved.
func Recorded(t core.Trade, today core.DaySummary, warnings []string) string {
	var sb strings.Builder
	sb.WriteString("✅ <b>Trade recorded</b>\n\n")
	sb.WriteString(fmt.Sprintf("📊 <b>Today:</b> %d trades, %s USD\n", today.Count, Signed(today.TotalPnL)))
	for _, w := range warnings {
		sb.WriteString("\n" + w + "\n")
	}
	if t.Category == core.CategoryImpulse {
		sb.WriteString("\n😤 Marked as an <b>impulsive</b> trade")
	}
	return sb.String()
}

// Startup renders the message sent to the owner when the bot starts.
func Startup(now time.Time) string {
	return fmt.Sprintf("🤖 <b>Bot started</b>\n\nTime: %s\nReady to go!", now.Format(time.DateTime))
}
