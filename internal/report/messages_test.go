package report

import (
	"strings"
	"testing"
	"time"

	"github.com/adiptan/trading-journal/internal/core"
	"github.com/shopspring/decimal"
)

func TestToday(t *testing.T) {
	tests := []struct {
		name string
		s    core.DaySummary
		warn bool
	}{
		{"balanced", core.DaySummary{Count: 2, TotalPnL: decimal.NewFromInt(30), StrategyCount: 1, ImpulseCount: 1}, false},
		{"impulse heavy", core.DaySummary{Count: 3, TotalPnL: decimal.NewFromInt(-30), StrategyCount: 1, ImpulseCount: 2}, true},
		{"empty", core.DaySummary{TotalPnL: decimal.Zero}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Today(tt.s)
			if !strings.Contains(out, "Trades: ") {
				t.Errorf("missing count:\n%s", out)
			}
			if got := strings.Contains(out, "Attention"); got != tt.warn {
				t.Errorf("warning present = %v, want %v\n%s", got, tt.warn, out)
			}
		})
	}
}

func TestDaily(t *testing.T) {
	s := core.DaySummary{Count: 4, TotalPnL: decimal.NewFromInt(-12), StrategyCount: 1, ImpulseCount: 3}
	out := Daily(s, []string{"⚠️ Too many impulsive trades"})
	for _, p := range []string{"Daily recap", "Trades: 4", "P/L: -12.00 USD", "😤 Impulsive: 3", "⚠️ Too many impulsive trades"} {
		if !strings.Contains(out, p) {
			t.Errorf("Daily() missing %q\n%s", p, out)
		}
	}
}

func TestWeekBrief(t *testing.T) {
	if got := WeekBrief(nil); got != NoTradesMessage {
		t.Errorf("WeekBrief(nil) = %q", got)
	}

	trades := core.Trades{
		mk(1, 100, core.CategoryStrategy, 0),
		mk(2, -40, core.CategoryImpulse, time.Hour),
	}
	out := WeekBrief(trades)
	for _, p := range []string{"Trades: 2", "P/L: +60.00 USD", "Win Rate: 50.0%", "Profit Factor: 2.50", "/report"} {
		if !strings.Contains(out, p) {
			t.Errorf("WeekBrief() missing %q\n%s", p, out)
		}
	}
}

func TestRecent(t *testing.T) {
	if got := Recent(nil); got != NoTradesYetMessage {
		t.Errorf("Recent(nil) = %q", got)
	}

	trades := core.Trades{
		mk(7, 25, core.CategoryStrategy, time.Hour),
		mk(6, -10, core.CategoryImpulse, 0),
	}
	out := Recent(trades)
	for _, p := range []string{
		"Last 2 trades",
		"1. 📈 BTC long <i>#7</i>",
		"🎯 +25.00 USD (strategy)",
		"2. 📉 BTC long <i>#6</i>",
		"😤 -10.00 USD (impulse)",
		"2025-03-10 11:00:00",
	} {
		if !strings.Contains(out, p) {
			t.Errorf("Recent() missing %q\n%s", p, out)
		}
	}
}

func TestRecent_EscapesPair(t *testing.T) {
	tr := mk(3, 1, core.CategoryStrategy, 0)
	tr.Pair = "A<B&C"

	out := Recent(core.Trades{tr})
	if !strings.Contains(out, "1. 📈 A&lt;B&amp;C long <i>#3</i>") {
		t.Errorf("pair not escaped:\n%s", out)
	}
	if strings.Contains(out, "A<B") {
		t.Errorf("raw markup left in message:\n%s", out)
	}
}

func TestRecorded(t *testing.T) {
	tr := mk(1, -10, core.CategoryImpulse, 0)
	today := core.DaySummary{Count: 3, TotalPnL: decimal.NewFromInt(15), ImpulseCount: 2}

	out := Recorded(tr, today, []string{"⚠️ take a break"})
	for _, p := range []string{"Trade recorded", "3 trades, +15.00 USD", "⚠️ take a break", "impulsive</b> trade"} {
		if !strings.Contains(out, p) {
			t.Errorf("Recorded() missing %q\n%s", p, out)
		}
	}

	tr.Category = core.CategoryStrategy
	if out := Recorded(tr, today, nil); strings.Contains(out, "impulsive") {
		t.Errorf("strategy trade should not be marked impulsive:\n%s", out)
	}
}

func TestStartup(t *testing.T) {
	out := Startup(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	if !strings.Contains(out, "2025-01-02 03:04:05") {
		t.Errorf("Startup() = %q", out)
	}
}
