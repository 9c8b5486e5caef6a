// Package app is the journal's application service. Bot handlers, the HTTP
// API, the scheduler and the CLI all go through App.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adiptan/trading-journal/internal/alert"
	"github.com/adiptan/trading-journal/internal/coach"
	"github.com/adiptan/trading-journal/internal/core"
	"github.com/adiptan/trading-journal/internal/metrics"
	"github.com/adiptan/trading-journal/internal/notifier"
	"github.com/adiptan/trading-journal/internal/parser"
	"github.com/adiptan/trading-journal/internal/report"
	"github.com/adiptan/trading-journal/internal/storage/archive"
	"github.com/adiptan/trading-journal/internal/storage/trade"
	"go.uber.org/zap"
)

const (
	DefaultReportDays  = 7
	DefaultRecentLimit = 5
)

// Deps are the collaborators of App. Store is required; Archive and Coach
// are optional.
type Deps struct {
	Store     trade.Store
	Parser    *parser.Parser
	Composer  *report.Composer
	Alerts    *alert.Evaluator
	Notifiers *notifier.Registry
	Archive   *archive.ReportArchive
	Coach     *coach.Coach
	Metrics   *metrics.Registry

	Location    *time.Location
	Now         func() time.Time
	ReportDays  int
	RecentLimit int
}

// TradeReceipt is the outcome of recording a trade.
type TradeReceipt struct {
	Trade    core.Trade
	Today    core.DaySummary
	Warnings []string
	Text     string
}

// App is the main application service
type App struct {
	store     trade.Store
	parser    *parser.Parser
	composer  *report.Composer
	alerts    *alert.Evaluator
	notifiers *notifier.Registry
	archive   *archive.ReportArchive
	coach     *coach.Coach
	metrics   *metrics.Registry
	logger    *zap.Logger

	loc         *time.Location
	now         func() time.Time
	reportDays  int
	recentLimit int

	mu       sync.RWMutex
	lastSent map[notifier.Kind]time.Time
}

// New creates a new App instance
func New(d Deps, logger *zap.Logger) (*App, error) {
	if d.Store == nil {
		return nil, fmt.Errorf("app: store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if d.Parser == nil {
		d.Parser = parser.New(nil, nil)
	}
	if d.Composer == nil {
		d.Composer = report.NewComposer(nil)
	}
	if d.Alerts == nil {
		d.Alerts = alert.NewEvaluator(alert.DefaultRules(), logger)
	}
	if d.Notifiers == nil {
		d.Notifiers = notifier.NewRegistry()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewRegistry()
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.ReportDays <= 0 {
		d.ReportDays = DefaultReportDays
	}
	if d.RecentLimit <= 0 {
		d.RecentLimit = DefaultRecentLimit
	}

	return &App{
		store:       d.Store,
		parser:      d.Parser,
		composer:    d.Composer,
		alerts:      d.Alerts,
		notifiers:   d.Notifiers,
		archive:     d.Archive,
		coach:       d.Coach,
		metrics:     d.Metrics,
		logger:      logger,
		loc:         d.Location,
		now:         d.Now,
		reportDays:  d.ReportDays,
		recentLimit: d.RecentLimit,
		lastSent:    make(map[notifier.Kind]time.Time),
	}, nil
}

// Metrics returns the metrics registry.
func (a *App) Metrics() *metrics.Registry { return a.metrics }

// Parser returns the trade parser.
func (a *App) Parser() *parser.Parser { return a.parser }

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) clock() time.Time {
	return a.now().In(a.loc)
}

// RecordTrade parses text, stores the trade stamped with the current time
// and reports today's totals with any fired trade alerts.
func (a *App) RecordTrade(ctx context.Context, text string) (*TradeReceipt, error) {
	t, err := a.parser.Parse(text)
	if err != nil {
		a.metrics.RecordParseError(core.ErrorCode(err))
		return nil, err
	}
	now := a.clock()
	t.ExecutedAt = now

	if err := a.store.Insert(ctx, t); err != nil {
		a.logger.Error("failed to save trade", zap.String("pair", t.Pair), zap.Error(err))
		return nil, err
	}
	a.metrics.RecordTrade(string(t.Category))

	today, err := a.store.TodaySummary(ctx, now)
	if err != nil {
		a.logger.Error("failed to load today's summary", zap.Error(err))
		return nil, err
	}
	a.metrics.SetTradesToday(today.StrategyCount, today.ImpulseCount)

	warnings := a.alerts.Fire(alert.ScopeTrade, today.Values())
	a.metrics.RecordAlerts(string(alert.ScopeTrade), len(warnings))

	a.logger.Info("trade recorded",
		zap.Int64("id", t.ID),
		zap.String("pair", t.Pair),
		zap.String("direction", string(t.Direction)),
		zap.String("pnl_usd", t.PnLUSD.String()),
		zap.String("category", string(t.Category)),
	)

	return &TradeReceipt{
		Trade:    *t,
		Today:    today,
		Warnings: warnings,
		Text:     report.Recorded(*t, today, warnings),
	}, nil
}

// Trades lists stored trades.
func (a *App) Trades(ctx context.Context, filter trade.ListFilter) (core.Trades, error) {
	return a.store.List(ctx, filter)
}

// History lists the trades of the last days days, newest first; days <= 0
// lists all of them. limit <= 0 means no limit.
func (a *App) History(ctx context.Context, days, limit int) (core.Trades, error) {
	filter := trade.ListFilter{Limit: limit}
	if days > 0 {
		filter = trade.LastDays(a.clock(), days)
		filter.Limit = limit
	}
	return a.store.List(ctx, filter)
}

// ReportTrades returns the trades of the report window.
func (a *App) ReportTrades(ctx context.Context) (core.Trades, error) {
	return a.store.List(ctx, trade.LastDays(a.clock(), a.reportDays))
}

// Analysis computes the weekly figures without rendering them.
func (a *App) Analysis(ctx context.Context) (report.Weekly, core.Trades, error) {
	trades, err := a.ReportTrades(ctx)
	if err != nil {
		return report.Weekly{}, nil, err
	}
	return a.composer.Analyze(trades), trades, nil
}

// WeeklyReport renders the full weekly report.
func (a *App) WeeklyReport(ctx context.Context) (string, error) {
	trades, err := a.ReportTrades(ctx)
	if err != nil {
		return "", err
	}
	return a.composer.Weekly(trades), nil
}

// WeekBrief renders the short weekly statistics.
func (a *App) WeekBrief(ctx context.Context) (string, error) {
	trades, err := a.ReportTrades(ctx)
	if err != nil {
		return "", err
	}
	return report.WeekBrief(trades), nil
}

// TodaySummary returns today's aggregate.
func (a *App) TodaySummary(ctx context.Context) (core.DaySummary, error) {
	s, err := a.store.TodaySummary(ctx, a.clock())
	if err != nil {
		return core.DaySummary{}, err
	}
	a.metrics.SetTradesToday(s.StrategyCount, s.ImpulseCount)
	return s, nil
}

// Today renders today's statistics.
func (a *App) Today(ctx context.Context) (string, error) {
	s, err := a.TodaySummary(ctx)
	if err != nil {
		return "", err
	}
	return report.Today(s), nil
}

// Recent renders the n most recent trades; n <= 0 uses the configured limit.
func (a *App) Recent(ctx context.Context, n int) (string, error) {
	if n <= 0 {
		n = a.recentLimit
	}
	trades, err := a.store.List(ctx, trade.ListFilter{Limit: n})
	if err != nil {
		return "", err
	}
	return report.Recent(trades), nil
}

// DeleteTrade removes a trade by ID.
func (a *App) DeleteTrade(ctx context.Context, id int64) error {
	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	a.logger.Info("trade deleted", zap.Int64("id", id))
	return nil
}

// SendDailySummary delivers the end-of-day recap. Days without trades are
// skipped.
func (a *App) SendDailySummary(ctx context.Context) error {
	s, err := a.TodaySummary(ctx)
	if err != nil {
		return err
	}
	if s.Count == 0 {
		a.logger.Info("no trades today, daily summary skipped")
		return nil
	}

	warnings := a.alerts.Fire(alert.ScopeDaily, s.Values())
	a.metrics.RecordAlerts(string(alert.ScopeDaily), len(warnings))

	return a.deliver(ctx, notifier.Message{
		Kind:  notifier.KindDaily,
		Title: "Daily recap",
		Text:  report.Daily(s, warnings),
	})
}

// SendWeeklyReport composes the weekly report, appends coach commentary when
// a coach is configured, delivers it and archives it.
func (a *App) SendWeeklyReport(ctx context.Context) error {
	w, trades, err := a.Analysis(ctx)
	if err != nil {
		return err
	}

	text := report.NoTradesMessage
	if len(trades) > 0 {
		text = w.Render()
		if a.coach != nil {
			if comment := a.coach.Comment(ctx, w); comment != "" {
				text += "\n\n" + comment
			}
		}
	}

	sendErr := a.deliver(ctx, notifier.Message{
		Kind:  notifier.KindWeekly,
		Title: "Weekly report",
		Text:  text,
	})

	if a.archive != nil && len(trades) > 0 {
		if _, err := a.archive.SaveWeekly(ctx, a.clock(), text, trades); err != nil {
			a.logger.Error("failed to archive weekly report", zap.Error(err))
		}
	}
	return sendErr
}

// NotifyStartup tells the notifiers the bot is up.
func (a *App) NotifyStartup(ctx context.Context) error {
	return a.deliver(ctx, notifier.Message{
		Kind:  notifier.KindStartup,
		Title: "Bot started",
		Text:  report.Startup(a.clock()),
	})
}

// LastSent reports when a message kind was last delivered.
func (a *App) LastSent(kind notifier.Kind) (time.Time, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t, ok := a.lastSent[kind]
	return t, ok
}

func (a *App) deliver(ctx context.Context, msg notifier.Message) error {
	d := a.notifiers.NotifyAll(ctx, msg)
	if !d.Attempted() {
		a.logger.Warn("no notifier subscribed, message dropped", zap.String("kind", string(msg.Kind)))
		return nil
	}

	for range d.Sent {
		a.metrics.RecordReport(string(msg.Kind), "ok")
	}
	for _, name := range d.FailedNames() {
		a.metrics.RecordReport(string(msg.Kind), "error")
		a.logger.Error("notifier failed",
			zap.String("notifier", name),
			zap.String("kind", string(msg.Kind)),
			zap.Error(d.Failed[name]),
		)
	}
	if err := d.Err(); err != nil {
		return core.WrapError(core.ErrNotifierFailed, err)
	}

	a.mu.Lock()
	a.lastSent[msg.Kind] = a.clock()
	a.mu.Unlock()
	a.logger.Info("message delivered", zap.String("kind", string(msg.Kind)), zap.Int("notifiers", a.notifiers.Len()))
	return nil
}
