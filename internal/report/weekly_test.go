package report

import (
	"strings"
	"testing"
	"time"

	"github.com/adiptan/trading-journal/internal/analytics"
	"github.com/adiptan/trading-journal/internal/core"
	"github.com/shopspring/decimal"
)

var monday = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func mk(id, pnl int64, cat core.Category, offset time.Duration) core.Trade {
	return core.Trade{
		ID:         id,
		Pair:       "BTC",
		Direction:  core.DirectionLong,
		PnLUSD:     decimal.NewFromInt(pnl),
		Category:   cat,
		ExecutedAt: monday.Add(offset),
	}
}

func TestComposer_WeeklyEmpty(t *testing.T) {
	c := NewComposer(nil)
	if got := c.Weekly(nil); got != NoTradesMessage {
		t.Errorf("Weekly(nil) = %q, want %q", got, NoTradesMessage)
	}
	if got := c.Weekly(core.Trades{}); got != NoTradesMessage {
		t.Errorf("Weekly(empty) = %q", got)
	}
}

func TestComposer_Weekly(t *testing.T) {
	trades := core.Trades{
		mk(1, 100, core.CategoryStrategy, 0),
		mk(2, -50, core.CategoryImpulse, time.Hour),
		mk(3, -20, core.CategoryImpulse, 2*time.Hour),
		mk(4, 200, core.CategoryStrategy, 3*time.Hour),
		mk(5, -10, core.CategoryImpulse, 4*time.Hour),
	}

	out := NewComposer(nil).Weekly(trades)

	wantParts := []string{
		"📈 <b>WEEKLY REPORT</b>",
		"💰 <b>Overall result:</b> +220.00 USD",
		"📊 Total trades: 5",
		"📈 Win Rate: 40.0%",
		"🎯 <b>STRATEGY:</b>\n   Trades: 2\n   Win Rate: 100.0%\n   P/L: +300.00 USD\n   Avg win: 150.00 USD\n   Avg loss: 0.00 USD",
		"😤 <b>IMPULSIVE:</b>\n   Trades: 3\n   Win Rate: 0.0%\n   P/L: -80.00 USD",
		"🔍 <b>PATTERNS DETECTED:</b>",
		"😤 1 revenge attempt(s) after a loss",
		"💡 <b>RECOMMENDATIONS:</b>",
		"⛔ More impulsive trades than strategy trades!",
		"💸 Impulsivity cost you 80.00 USD of profit",
		"✅ The strategy works! The problem is discipline",
	}
	for _, p := range wantParts {
		if !strings.Contains(out, p) {
			t.Errorf("report missing %q\n---\n%s", p, out)
		}
	}

	// Block order is fixed.
	idx := func(s string) int { return strings.Index(out, s) }
	if !(idx("STRATEGY") < idx("IMPULSIVE") && idx("IMPULSIVE") < idx("PATTERNS") && idx("PATTERNS") < idx("RECOMMENDATIONS")) {
		t.Errorf("blocks out of order:\n%s", out)
	}
	if idx("⛔") > idx("💸") || idx("💸") > idx("✅") {
		t.Errorf("recommendations out of order:\n%s", out)
	}
}

func TestComposer_WeeklyNoFindingsNoRecommendations(t *testing.T) {
	trades := core.Trades{
		mk(1, 100, core.CategoryStrategy, 0),
		mk(2, 50, core.CategoryUnknown, time.Hour),
	}
	out := NewComposer(nil).Weekly(trades)

	if strings.Contains(out, "PATTERNS DETECTED") {
		t.Errorf("patterns block should be omitted:\n%s", out)
	}
	if !strings.Contains(out, "RECOMMENDATIONS") {
		t.Error("recommendations header is always rendered")
	}
	for _, r := range []string{"⛔", "💸", "✅"} {
		if strings.Contains(out, r) {
			t.Errorf("unexpected recommendation %s:\n%s", r, out)
		}
	}
}

func TestComposer_AnalyzeSortsBeforeDetection(t *testing.T) {
	// Losses are adjacent only in chronological order.
	trades := core.Trades{
		mk(1, -1, core.CategoryStrategy, 0),
		mk(4, 5, core.CategoryStrategy, 3*time.Hour),
		mk(2, -1, core.CategoryStrategy, time.Hour),
		mk(3, -1, core.CategoryStrategy, 2*time.Hour),
	}
	w := NewComposer(nil).Analyze(trades)
	if len(w.Findings) != 1 || w.Findings[0].Kind != analytics.KindLosingStreak {
		t.Errorf("Findings = %+v, want losing streak", w.Findings)
	}
}

func TestRecommendations(t *testing.T) {
	tests := []struct {
		name     string
		overall  int64
		strategy int64
		impulse  int64
		sCount   int
		iCount   int
		want     []string
	}{
		{"none", 10, 10, 0, 1, 0, nil},
		{"impulse majority", 10, 10, 0, 1, 2, []string{"⛔"}},
		{"impulse loss", 5, 0, -5, 1, 1, []string{"💸"}},
		{"discipline", 50, 100, -50, 2, 1, []string{"💸", "✅"}},
		{"strategy negative", -50, -10, -40, 2, 1, []string{"💸"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Weekly{
				Overall:  analytics.Metrics{TotalPnL: decimal.NewFromInt(tt.overall)},
				Strategy: analytics.Metrics{TotalPnL: decimal.NewFromInt(tt.strategy), TotalTrades: tt.sCount},
				Impulse:  analytics.Metrics{TotalPnL: decimal.NewFromInt(tt.impulse), TotalTrades: tt.iCount},
			}
			got := recommendations(w)
			if len(got) != len(tt.want) {
				t.Fatalf("recommendations() = %v, want prefixes %v", got, tt.want)
			}
			for i, prefix := range tt.want {
				if !strings.HasPrefix(got[i], prefix) {
					t.Errorf("recommendation[%d] = %q, want prefix %s", i, got[i], prefix)
				}
			}
		})
	}
}

func TestSigned(t *testing.T) {
	tests := map[string]string{
		"100":   "+100.00",
		"-50.5": "-50.50",
		"0":     "+0.00",
		"2.225": "+2.23",
	}
	for in, want := range tests {
		if got := Signed(decimal.RequireFromString(in)); got != want {
			t.Errorf("Signed(%s) = %s, want %s", in, got, want)
		}
	}
	if got := Money(decimal.RequireFromString("-3")); got != "-3.00" {
		t.Errorf("Money(-3) = %s", got)
	}
}
