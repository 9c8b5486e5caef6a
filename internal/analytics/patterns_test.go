package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/adiptan/trading-journal/internal/core"
)

func atHour(pnl int64, cat core.Category, hour int) core.Trade {
	tr := trade(pnl, cat, 0)
	tr.ExecutedAt = time.Date(2025, 3, 10, hour, 0, 0, 0, time.UTC)
	return tr
}

func kinds(fs []Finding) []FindingKind {
	out := make([]FindingKind, len(fs))
	for i, f := range fs {
		out[i] = f.Kind
	}
	return out
}

func TestDetectPatterns_Empty(t *testing.T) {
	if got := DetectPatterns(nil); len(got) != 0 {
		t.Errorf("DetectPatterns(nil) = %v, want none", got)
	}
}

func TestDetectPatterns_LateNight(t *testing.T) {
	tests := []struct {
		name   string
		trades core.Trades
		found  bool
		value  float64
	}{
		{
			name: "two of three late",
			trades: core.Trades{
				atHour(10, core.CategoryImpulse, 22),
				atHour(10, core.CategoryImpulse, 23),
				atHour(10, core.CategoryImpulse, 14),
				atHour(10, core.CategoryStrategy, 23),
			},
			found: true, value: 67,
		},
		{
			name:   "strategy only late",
			trades: core.Trades{atHour(10, core.CategoryStrategy, 23)},
			found:  false,
		},
		{
			name:   "impulse before cutoff",
			trades: core.Trades{atHour(10, core.CategoryImpulse, 21)},
			found:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := DetectPatterns(tt.trades)
			var got *Finding
			for i := range fs {
				if fs[i].Kind == KindLateNightImpulse {
					got = &fs[i]
				}
			}
			if (got != nil) != tt.found {
				t.Fatalf("late-night finding = %v, want found %v", got, tt.found)
			}
			if got != nil {
				if got.Value != tt.value {
					t.Errorf("Value = %v, want %v", got.Value, tt.value)
				}
				if !strings.Contains(got.Message, "67%") || !strings.Contains(got.Message, "22:00") {
					t.Errorf("Message = %q", got.Message)
				}
			}
		})
	}
}

func TestDetectPatterns_LateNightRoundsHalfToEven(t *testing.T) {
	// One of eight impulsive trades late: 12.5% is reported as 12.
	trades := core.Trades{atHour(-5, core.CategoryImpulse, 23)}
	for i := 0; i < 7; i++ {
		trades = append(trades, atHour(-5, core.CategoryImpulse, 10))
	}

	for _, f := range DetectPatterns(trades) {
		if f.Kind != KindLateNightImpulse {
			continue
		}
		if f.Value != 12 {
			t.Errorf("Value = %v, want 12", f.Value)
		}
		if !strings.HasPrefix(f.Message, "⚠️ 12% of impulsive trades after 22:00") {
			t.Errorf("unexpected message %q", f.Message)
		}
		return
	}
	t.Fatal("late-night finding missing")
}

func TestDetectPatterns_LosingStreak(t *testing.T) {
	// 3 losses, a win, then 4 losses, then a win.
	var trades core.Trades
	pnls := []int64{-1, -1, -1, 5, -1, -1, -1, -1, 5}
	for i, p := range pnls {
		trades = append(trades, trade(p, core.CategoryStrategy, time.Duration(i)*time.Minute))
	}

	fs := DetectPatterns(trades)
	if len(fs) != 1 || fs[0].Kind != KindLosingStreak {
		t.Fatalf("findings = %v, want one losing streak", kinds(fs))
	}
	if fs[0].Value != 4 {
		t.Errorf("streak = %v, want 4", fs[0].Value)
	}
	if !strings.Contains(fs[0].Message, "4 in a row") {
		t.Errorf("Message = %q", fs[0].Message)
	}
}

func TestDetectPatterns_StreakBelowThreshold(t *testing.T) {
	trades := core.Trades{
		trade(-1, core.CategoryStrategy, 0),
		trade(-1, core.CategoryStrategy, time.Minute),
		trade(0, core.CategoryStrategy, 2*time.Minute),
		trade(-1, core.CategoryStrategy, 3*time.Minute),
	}
	if fs := DetectPatterns(trades); len(fs) != 0 {
		t.Errorf("findings = %v, want none", kinds(fs))
	}
}

func TestDetectPatterns_StreakUsesGivenOrder(t *testing.T) {
	// Chronologically the losses are adjacent; in the given order they are not.
	trades := core.Trades{
		trade(-1, core.CategoryStrategy, 0),
		trade(5, core.CategoryStrategy, 3*time.Minute),
		trade(-1, core.CategoryStrategy, time.Minute),
		trade(-1, core.CategoryStrategy, 2*time.Minute),
	}
	for _, f := range DetectPatterns(trades) {
		if f.Kind == KindLosingStreak {
			t.Errorf("unexpected streak finding in given order: %v", f)
		}
	}

	sorted := DetectPatterns(trades.SortChronologically())
	if len(sorted) != 1 || sorted[0].Kind != KindLosingStreak {
		t.Errorf("sorted findings = %v, want losing streak", kinds(sorted))
	}
}

func TestDetectPatterns_Revenge(t *testing.T) {
	// Given out of order; revenge is evaluated on the sorted copy.
	trades := core.Trades{
		trade(-20, core.CategoryImpulse, 2*time.Hour),
		trade(-10, core.CategoryStrategy, 0),
		trade(15, core.CategoryImpulse, time.Hour),
		trade(5, core.CategoryImpulse, 3*time.Hour),
	}

	fs := DetectPatterns(trades)
	if len(fs) != 1 || fs[0].Kind != KindRevengeTrading {
		t.Fatalf("findings = %v, want revenge only", kinds(fs))
	}
	if fs[0].Value != 2 {
		t.Errorf("revenge count = %v, want 2", fs[0].Value)
	}
	if !strings.Contains(fs[0].Message, "2 revenge attempt(s)") {
		t.Errorf("Message = %q", fs[0].Message)
	}
}

func TestDetectPatterns_Order(t *testing.T) {
	trades := core.Trades{
		atHour(-1, core.CategoryStrategy, 19),
		atHour(-1, core.CategoryImpulse, 20),
		atHour(-1, core.CategoryImpulse, 23),
	}
	got := kinds(DetectPatterns(trades))
	want := []FindingKind{KindLateNightImpulse, KindLosingStreak, KindRevengeTrading}
	if len(got) != len(want) {
		t.Fatalf("findings = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("finding[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNewDetector_Thresholds(t *testing.T) {
	d := NewDetector(20, 2)
	trades := core.Trades{
		atHour(-1, core.CategoryImpulse, 20),
		atHour(-1, core.CategoryStrategy, 21),
	}
	got := kinds(d.Detect(trades))
	if len(got) != 2 || got[0] != KindLateNightImpulse || got[1] != KindLosingStreak {
		t.Errorf("findings = %v", got)
	}

	def := NewDetector(-1, 0)
	if def.LateNightHour != DefaultLateNightHour || def.MinLosingStreak != DefaultMinLosingStreak {
		t.Errorf("defaults not applied: %+v", def)
	}
}
