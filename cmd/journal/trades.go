package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adiptan/trading-journal/internal/app"
	"github.com/adiptan/trading-journal/internal/config"
	"github.com/adiptan/trading-journal/internal/report"
	"github.com/spf13/cobra"
)

var (
	reportDays int
	lastLimit  int
)

var addCmd = &cobra.Command{
	Use:     "add <trade>",
	Short:   "Record a trade",
	Example: `  journal add "BTC long 45000 46000 +100 strategy"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(nil, func(a *app.App) error {
			receipt, err := a.RecordTrade(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "#%d\n%s\n", receipt.Trade.ID, plain(receipt.Text))
			return nil
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the weekly report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(cfg *config.Config) {
			if reportDays > 0 {
				cfg.Journal.ReportDays = reportDays
			}
		}, func(a *app.App) error {
			text, err := a.WeeklyReport(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), plain(text))
			return nil
		})
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Print today's statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(nil, func(a *app.App) error {
			text, err := a.Today(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), plain(text))
			return nil
		})
	},
}

var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Print the most recent trades",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(nil, func(a *app.App) error {
			text, err := a.Recent(cmd.Context(), lastLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), plain(text))
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a trade",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid trade id %q", args[0])
		}
		return withApp(nil, func(a *app.App) error {
			if err := a.DeleteTrade(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), plain(report.Deleted(id)))
			return nil
		})
	},
}

var sendCmd = &cobra.Command{
	Use:       "send <daily|weekly>",
	Short:     "Send a scheduled summary now",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"daily", "weekly"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(nil, func(a *app.App) error {
			switch args[0] {
			case "daily":
				return a.SendDailySummary(cmd.Context())
			case "weekly":
				return a.SendWeeklyReport(cmd.Context())
			default:
				return fmt.Errorf("unknown summary %q, want daily or weekly", args[0])
			}
		})
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportDays, "days", 0, "report window in days (default from config)")
	lastCmd.Flags().IntVar(&lastLimit, "limit", 0, "number of trades (default from config)")

	rootCmd.AddCommand(addCmd, reportCmd, todayCmd, lastCmd, deleteCmd, sendCmd)
}

// withApp builds the journal from configuration, runs fn and closes it.
// configure, if set, adjusts the loaded configuration before wiring.
func withApp(configure func(cfg *config.Config), fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if configure != nil {
		configure(cfg)
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := app.FromConfig(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
