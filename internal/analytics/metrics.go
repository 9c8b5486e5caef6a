// Package analytics computes performance metrics and behavioral patterns
// over trade collections. All functions are pure.
package analytics

import (
	"github.com/adiptan/trading-journal/internal/core"
	"github.com/shopspring/decimal"
)

// Metrics summarizes the performance of a set of trades
type Metrics struct {
	TotalTrades  int
	Wins         int
	Losses       int
	WinRate      float64 // percent
	TotalPnL     decimal.Decimal
	AvgWin       decimal.Decimal
	AvgLoss      decimal.Decimal // negative or zero
	ProfitFactor float64
}

// ComputeMetrics computes metrics over trades, optionally restricted to one
// category. Only the first filter value is used.
func ComputeMetrics(trades core.Trades, filter ...core.Category) Metrics {
	if len(filter) > 0 {
		trades = trades.Filter(filter[0])
	}

	m := Metrics{
		TotalPnL: decimal.Zero,
		AvgWin:   decimal.Zero,
		AvgLoss:  decimal.Zero,
	}
	if len(trades) == 0 {
		return m
	}

	grossWin := decimal.Zero
	grossLoss := decimal.Zero
	for _, t := range trades {
		m.TotalPnL = m.TotalPnL.Add(t.PnLUSD)
		switch {
		case t.IsWin():
			m.Wins++
			grossWin = grossWin.Add(t.PnLUSD)
		case t.IsLoss():
			m.Losses++
			grossLoss = grossLoss.Add(t.PnLUSD)
		}
	}

	m.TotalTrades = len(trades)
	m.WinRate = float64(m.Wins) / float64(m.TotalTrades) * 100
	if m.Wins > 0 {
		m.AvgWin = grossWin.Div(decimal.NewFromInt(int64(m.Wins)))
	}
	if m.Losses > 0 {
		m.AvgLoss = grossLoss.Div(decimal.NewFromInt(int64(m.Losses)))
		m.ProfitFactor = grossWin.Div(grossLoss.Abs()).InexactFloat64()
	}
	return m
}

// Values exposes the metrics as named floats for alert rules and prompts.
func (m Metrics) Values() map[string]float64 {
	return map[string]float64{
		"total_trades":  float64(m.TotalTrades),
		"win_rate":      m.WinRate,
		"total_pnl":     m.TotalPnL.InexactFloat64(),
		"avg_win":       m.AvgWin.InexactFloat64(),
		"avg_loss":      m.AvgLoss.InexactFloat64(),
		"profit_factor": m.ProfitFactor,
	}
}
