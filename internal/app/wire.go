package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/adiptan/trading-journal/internal/alert"
	"github.com/adiptan/trading-journal/internal/analytics"
	"github.com/adiptan/trading-journal/internal/coach"
	"github.com/adiptan/trading-journal/internal/config"
	"github.com/adiptan/trading-journal/internal/core"
	llmfactory "github.com/adiptan/trading-journal/internal/llm/factory"
	"github.com/adiptan/trading-journal/internal/metrics"
	notifierfactory "github.com/adiptan/trading-journal/internal/notifier/factory"
	"github.com/adiptan/trading-journal/internal/parser"
	"github.com/adiptan/trading-journal/internal/report"
	"github.com/adiptan/trading-journal/internal/storage/archive"
	"github.com/adiptan/trading-journal/internal/storage/trade"
	"go.uber.org/zap"
)

// Location loads the journal's time zone.
func Location(cfg *config.Config) (*time.Location, error) {
	if cfg.Schedule.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("timezone %q: %w", cfg.Schedule.Timezone, err))
	}
	return loc, nil
}

// NewParser builds the parser from the journal settings.
func NewParser(cfg config.JournalConfig) *parser.Parser {
	var directions map[string]core.Direction
	if len(cfg.Directions) > 0 {
		directions = make(map[string]core.Direction, len(parser.DefaultDirections)+len(cfg.Directions))
		for word, dir := range parser.DefaultDirections {
			directions[word] = dir
		}
		for word, dir := range cfg.Directions {
			directions[strings.ToLower(word)] = core.Direction(strings.ToLower(dir))
		}
	}
	return parser.New(parser.NewClassifier(cfg.StrategyTags, cfg.ImpulseTags), directions)
}

// FromConfig wires an App and all its collaborators from configuration.
func FromConfig(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := Location(cfg)
	if err != nil {
		return nil, err
	}

	store, err := trade.Open(cfg.Storage, loc, logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	rules, err := alert.RulesFromConfig(cfg.Alerts)
	if err != nil {
		store.Close()
		return nil, err
	}

	notifiers, err := notifierfactory.Registry(cfg.Notifiers, cfg.Telegram)
	if err != nil {
		store.Close()
		return nil, err
	}

	deps := Deps{
		Store:       store,
		Parser:      NewParser(cfg.Journal),
		Composer:    report.NewComposer(analytics.NewDetector(cfg.Journal.LateNightHour, cfg.Journal.MinLosingStreak)),
		Alerts:      alert.NewEvaluator(rules, logger.Named("alert")),
		Notifiers:   notifiers,
		Metrics:     metrics.NewRegistry(),
		Location:    loc,
		ReportDays:  cfg.Journal.ReportDays,
		RecentLimit: cfg.Journal.RecentLimit,
	}

	if cfg.Archive.Enabled {
		backend, err := archive.New(cfg.Archive)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("opening archive: %w", err)
		}
		deps.Archive = archive.NewReportArchive(backend, logger.Named("archive"))
	}

	if cfg.LLM.Provider != "" {
		provider, err := llmfactory.New(cfg.LLM)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("creating LLM provider: %w", err)
		}
		deps.Coach = coach.New(provider, coach.Config{
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		}, logger.Named("coach"))
	}

	logger.Info("journal configured",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("timezone", loc.String()),
		zap.Int("notifiers", notifiers.Len()),
		zap.Bool("archive", deps.Archive != nil),
		zap.Bool("coach", deps.Coach != nil),
	)
	return New(deps, logger)
}
