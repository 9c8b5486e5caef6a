// internal/api/handler/api/report.go
package api

import (
	"context"
	"net/http"

	"github.com/adiptan/trading-journal/internal/analytics"
	"github.com/adiptan/trading-journal/internal/api/response"
	"github.com/adiptan/trading-journal/internal/core"
	"github.com/adiptan/trading-journal/internal/report"
	"github.com/shopspring/decimal"
)

// ReportJournal is what ReportHandler needs from the journal.
type ReportJournal interface {
	Analysis(ctx context.Context) (report.Weekly, core.Trades, error)
	TodaySummary(ctx context.Context) (core.DaySummary, error)
}

// MetricsView is the JSON form of analytics.Metrics.
type MetricsView struct {
	TotalTrades  int             `json:"total_trades"`
	Wins         int             `json:"wins"`
	Losses       int             `json:"losses"`
	WinRate      float64         `json:"win_rate"`
	TotalPnL     decimal.Decimal `json:"total_pnl"`
	AvgWin       decimal.Decimal `json:"avg_win"`
	AvgLoss      decimal.Decimal `json:"avg_loss"`
	ProfitFactor float64         `json:"profit_factor"`
}

func viewMetrics(m analytics.Metrics) MetricsView {
	return MetricsView{
		TotalTrades:  m.TotalTrades,
		Wins:         m.Wins,
		Losses:       m.Losses,
		WinRate:      m.WinRate,
		TotalPnL:     m.TotalPnL,
		AvgWin:       m.AvgWin,
		AvgLoss:      m.AvgLoss,
		ProfitFactor: m.ProfitFactor,
	}
}

// FindingView is the JSON form of a detected pattern.
type FindingView struct {
	Kind    analytics.FindingKind `json:"kind"`
	Value   float64               `json:"value"`
	Message string                `json:"message"`
}

// ReportHandler serves the weekly report and today's statistics.
type ReportHandler struct {
	journal ReportJournal
}

// NewReportHandler creates a new report handler.
func NewReportHandler(journal ReportJournal) *ReportHandler {
	return &ReportHandler{journal: journal}
}

// Weekly returns the weekly figures. ?format=text answers with the rendered
// message instead.
func (h *ReportHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	weekly, trades, err := h.journal.Analysis(r.Context())
	if err != nil {
		response.Fail(w, err)
		return
	}

	text := report.NoTradesMessage
	if len(trades) > 0 {
		text = weekly.Render()
	}

	if r.URL.Query().Get("format") == "text" {
		response.HTML(w, http.StatusOK, text)
		return
	}

	findings := make([]FindingView, 0, len(weekly.Findings))
	for _, f := range weekly.Findings {
		findings = append(findings, FindingView{Kind: f.Kind, Value: f.Value, Message: f.Message})
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"trades":          len(trades),
		"overall":         viewMetrics(weekly.Overall),
		"strategy":        viewMetrics(weekly.Strategy),
		"impulse":         viewMetrics(weekly.Impulse),
		"findings":        findings,
		"recommendations": nonNil(weekly.Recommendations),
		"text":            text,
	})
}

// Today returns today's aggregate.
func (h *ReportHandler) Today(w http.ResponseWriter, r *http.Request) {
	s, err := h.journal.TodaySummary(r.Context())
	if err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"count":          s.Count,
		"total_pnl":      s.TotalPnL,
		"strategy_count": s.StrategyCount,
		"impulse_count":  s.ImpulseCount,
	})
}
