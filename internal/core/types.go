package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a trade
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Category is the behavioral class of a trade, derived from its tags
type Category string

const (
	CategoryStrategy Category = "strategy"
	CategoryImpulse  Category = "impulse"
	CategoryUnknown  Category = "unknown"
)

// Trade represents one reported transaction
type Trade struct {
	ID         int64
	Pair       string
	Direction  Direction
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	PnLUSD     decimal.Decimal
	PnLPct     decimal.Decimal
	Category   Category
	Tags       string
	ExecutedAt time.Time
}

// IsWin reports whether the trade closed in profit.
func (t Trade) IsWin() bool {
	return t.PnLUSD.IsPositive()
}

// IsLoss reports whether the trade closed at a loss.
func (t Trade) IsLoss() bool {
	return t.PnLUSD.IsNegative()
}

// Hour is the trade's hour of day on a 24-hour clock.
func (t Trade) Hour() int {
	return t.ExecutedAt.Hour()
}

// Date truncates ExecutedAt to midnight in its own location.
func (t Trade) Date() time.Time {
	y, m, d := t.ExecutedAt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.ExecutedAt.Location())
}

// Trades is an ordered trade collection
type Trades []Trade

// SortChronologically returns a copy ordered by ExecutedAt ascending.
// Trades with equal timestamps keep their relative order.
func (ts Trades) SortChronologically() Trades {
	sorted := make(Trades, len(ts))
	copy(sorted, ts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExecutedAt.Before(sorted[j].ExecutedAt)
	})
	return sorted
}

// Filter returns the trades of the given category, preserving order.
func (ts Trades) Filter(cat Category) Trades {
	out := make(Trades, 0, len(ts))
	for _, t := range ts {
		if t.Category == cat {
			out = append(out, t)
		}
	}
	return out
}

// DaySummary aggregates the trades of a single day
type DaySummary struct {
	Count         int
	TotalPnL      decimal.Decimal
	StrategyCount int
	ImpulseCount  int
}

// Summarize builds a DaySummary from a collection.
func Summarize(ts Trades) DaySummary {
	s := DaySummary{TotalPnL: decimal.Zero}
	for _, t := range ts {
		s.Count++
		s.TotalPnL = s.TotalPnL.Add(t.PnLUSD)
		switch t.Category {
		case CategoryStrategy:
			s.StrategyCount++
		case CategoryImpulse:
			s.ImpulseCount++
		}
	}
	return s
}

// Values exposes the summary as named metrics for alert rules.
func (s DaySummary) Values() map[string]float64 {
	return map[string]float64{
		"count":          float64(s.Count),
		"total_pnl":      s.TotalPnL.InexactFloat64(),
		"strategy_count": float64(s.StrategyCount),
		"impulse_count":  float64(s.ImpulseCount),
	}
}
