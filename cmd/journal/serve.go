package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/adiptan/trading-journal/internal/api"
	"github.com/adiptan/trading-journal/internal/app"
	"github.com/adiptan/trading-journal/internal/bot"
	"github.com/adiptan/trading-journal/internal/scheduler"
	"github.com/adiptan/trading-journal/internal/telegram"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot, scheduler and HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := app.FromConfig(cfg, log)
	if err != nil {
		return fmt.Errorf("wiring journal: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bg := newBackground(2)

	// Telegram bot
	if cfg.Telegram.BotToken != "" {
		client := telegram.New(cfg.Telegram.BotToken, telegram.WithBaseURL(cfg.Telegram.APIURL))
		me, err := client.GetMe(ctx)
		if err != nil {
			return fmt.Errorf("checking bot token: %w", err)
		}
		log.Info("telegram bot authorized", zap.String("username", me.Username))

		classifier := a.Parser().Classifier()
		b := bot.New(bot.Config{
			AdminID:      cfg.Telegram.AdminUserID,
			PollTimeout:  cfg.Telegram.PollTimeout,
			StrategyTags: classifier.StrategyMarkers(),
			ImpulseTags:  classifier.ImpulseMarkers(),
		}, a, client, a.Metrics(), log.Named("bot"))
		b.Guard().StartCleanupRoutine(ctx, 10*time.Minute)

		bg.Go("bot", func() error { return b.Run(ctx) })
	} else {
		log.Warn("telegram bot token not set, bot disabled")
	}

	// Scheduled summaries
	var sched *scheduler.Scheduler
	if cfg.Schedule.Enabled {
		loc, err := app.Location(cfg)
		if err != nil {
			return err
		}
		sched = scheduler.New(loc, a.Metrics(), log.Named("scheduler"))
		if err := sched.Add("daily", cfg.Schedule.Daily, a.SendDailySummary); err != nil {
			return err
		}
		if err := sched.Add("weekly", cfg.Schedule.Weekly, a.SendWeeklyReport); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
	}

	// HTTP API
	var server *api.Server
	if cfg.Server.Enabled {
		metricsPath := ""
		if cfg.Metrics.Enabled {
			metricsPath = cfg.Metrics.Path
		}
		server, err = api.NewServer(api.Config{
			Host:        cfg.Server.Host,
			Port:        cfg.Server.Port,
			APIKey:      cfg.Server.APIKey,
			MetricsPath: metricsPath,
		}, api.Dependencies{Journal: a, Metrics: a.Metrics()}, log.Named("api"))
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}
		bg.Go("api", server.Start)
	}

	if err := a.NotifyStartup(ctx); err != nil {
		log.Error("startup notification failed", zap.Error(err))
	}
	log.Info("journal running")

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case runErr = <-bg.Errors():
		log.Error("component failed, shutting down", zap.Error(runErr))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if server != nil {
		errs = append(errs, server.Shutdown(shutdownCtx))
	}
	if sched != nil {
		errs = append(errs, sched.Stop(shutdownCtx))
	}
	// The bot may still be recording a trade; the deferred a.Close must not
	// run before it returns.
	errs = append(errs, bg.Wait(shutdownCtx), runErr)
	return errors.Join(errs...)
}
