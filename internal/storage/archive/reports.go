// internal/storage/archive/reports.go
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/adiptan/trading-journal/internal/core"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	reportsDir   = "reports"
	snapshotsDir = "snapshots"
)

// WeekKey names an ISO week, e.g. "2025-W11".
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Snapshot is the archived form of a week's trades.
type Snapshot struct {
	Week        string          `json:"week"`
	GeneratedAt time.Time       `json:"generated_at"`
	Trades      []SnapshotTrade `json:"trades"`
}

type SnapshotTrade struct {
	ID         int64           `json:"id"`
	Pair       string          `json:"pair"`
	Direction  core.Direction  `json:"direction"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	ExitPrice  decimal.Decimal `json:"exit_price"`
	PnLUSD     decimal.Decimal `json:"pnl_usd"`
	PnLPct     decimal.Decimal `json:"pnl_pct"`
	Category   core.Category   `json:"category"`
	Tags       string          `json:"tags,omitempty"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// ReportArchive keeps rendered weekly reports and the trades behind them.
type ReportArchive struct {
	storage Storage
	logger  *zap.Logger
}

func NewReportArchive(storage Storage, logger *zap.Logger) *ReportArchive {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportArchive{storage: storage, logger: logger}
}

// SaveWeekly writes the report and the trade snapshot for the week containing at.
// Saving the same week twice overwrites the earlier copy.
func (a *ReportArchive) SaveWeekly(ctx context.Context, at time.Time, report string, trades core.Trades) (string, error) {
	week := WeekKey(at)

	snap := Snapshot{Week: week, GeneratedAt: at, Trades: make([]SnapshotTrade, 0, len(trades))}
	for _, t := range trades {
		snap.Trades = append(snap.Trades, SnapshotTrade{
			ID:         t.ID,
			Pair:       t.Pair,
			Direction:  t.Direction,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			PnLUSD:     t.PnLUSD,
			PnLPct:     t.PnLPct,
			Category:   t.Category,
			Tags:       t.Tags,
			ExecutedAt: t.ExecutedAt,
		})
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}

	if err := a.storage.Write(ctx, reportPath(week), []byte(report)); err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, fmt.Errorf("write report %s: %w", week, err))
	}
	if err := a.storage.Write(ctx, snapshotPath(week), data); err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, fmt.Errorf("write snapshot %s: %w", week, err))
	}

	a.logger.Info("weekly report archived",
		zap.String("week", week),
		zap.Int("trades", len(trades)),
	)
	return week, nil
}

// Report returns the archived report of week.
func (a *ReportArchive) Report(ctx context.Context, week string) (string, error) {
	data, err := a.storage.Read(ctx, reportPath(week))
	if errors.Is(err, fs.ErrNotExist) {
		return "", core.WrapError(core.ErrArchiveFailed, fmt.Errorf("no report for %s", week))
	}
	if err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}
	return string(data), nil
}

// Snapshot returns the archived trades of week.
func (a *ReportArchive) Snapshot(ctx context.Context, week string) (*Snapshot, error) {
	data, err := a.storage.Read(ctx, snapshotPath(week))
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	return &snap, nil
}

// Weeks lists archived weeks, newest first.
func (a *ReportArchive) Weeks(ctx context.Context) ([]string, error) {
	paths, err := a.storage.List(ctx, reportsDir)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	weeks := make([]string, 0, len(paths))
	for _, p := range paths {
		name := path.Base(p)
		if !strings.HasSuffix(name, ".html") {
			continue
		}
		weeks = append(weeks, strings.TrimSuffix(name, ".html"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(weeks)))
	return weeks, nil
}

func reportPath(week string) string { return reportsDir + "/" + week + ".html" }
func snapshotPath(week string) string { return snapshotsDir + "/" + week + ".json" }
