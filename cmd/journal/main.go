package main

import (
	"fmt"
	"html"
	"os"
	"regexp"

	"github.com/adiptan/trading-journal/internal/config"
	"github.com/adiptan/trading-journal/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "journal",
	Short: "Personal trading journal",
	Long: `A trading journal fed by one-line trade reports over Telegram.
It separates strategy trades from impulsive ones, spots behavioral patterns
and sends daily and weekly summaries.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env, the config file (if any) and the environment, then
// validates the result.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lc := logger.Config{
		Development: debug,
		Level:       cfg.Log.Level,
		Encoding:    cfg.Log.Encoding,
	}
	if debug {
		lc.Level = "debug"
	}
	return logger.New(lc)
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// plain strips the Telegram HTML markup for terminal output.
func plain(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}
