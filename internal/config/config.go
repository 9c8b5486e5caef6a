package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/adiptan/trading-journal/internal/core"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       LogConfig                 `mapstructure:"log"`
	Telegram  TelegramConfig            `mapstructure:"telegram"`
	Storage   StorageConfig             `mapstructure:"storage"`
	Archive   ArchiveConfig             `mapstructure:"archive"`
	Schedule  ScheduleConfig            `mapstructure:"schedule"`
	Journal   JournalConfig             `mapstructure:"journal"`
	Server    ServerConfig              `mapstructure:"server"`
	Metrics   MetricsConfig             `mapstructure:"metrics"`
	Alerts    AlertsConfig              `mapstructure:"alerts"`
	LLM       LLMConfig                 `mapstructure:"llm"`
	Notifiers map[string]NotifierConfig `mapstructure:"notifiers"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type TelegramConfig struct {
	BotToken    string        `mapstructure:"bot_token"`
	AdminUserID int64         `mapstructure:"admin_user_id"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	APIURL      string        `mapstructure:"api_url"`
}

type StorageConfig struct {
	Driver    string `mapstructure:"driver"` // "memory", "postgres" or "sqlite"
	DSN       string `mapstructure:"dsn"`    // For postgres
	Path      string `mapstructure:"path"`   // For sqlite
	MaxTrades int    `mapstructure:"max_trades"`
}

type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// ScheduleConfig holds the cron expressions of the automatic reports.
type ScheduleConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Timezone string `mapstructure:"timezone"`
	Daily    string `mapstructure:"daily"`
	Weekly   string `mapstructure:"weekly"`
}

// JournalConfig holds parsing and analysis settings.
type JournalConfig struct {
	StrategyTags    []string          `mapstructure:"strategy_tags"`
	ImpulseTags     []string          `mapstructure:"impulse_tags"`
	Directions      map[string]string `mapstructure:"directions"`
	LateNightHour   int               `mapstructure:"late_night_hour"`
	MinLosingStreak int               `mapstructure:"min_losing_streak"`
	ReportDays      int               `mapstructure:"report_days"`
	RecentLimit     int               `mapstructure:"recent_limit"`
}

type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	APIKey  string `mapstructure:"api_key"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// AlertsConfig holds alerts configuration.
type AlertsConfig struct {
	Rules []AlertRule `mapstructure:"rules"`
}

// AlertRule defines a single alert rule.
type AlertRule struct {
	Name     string `mapstructure:"name"`
	Expr     string `mapstructure:"expr"`
	Scope    string `mapstructure:"scope"` // "trade" or "daily"
	Severity string `mapstructure:"severity"`
	Message  string `mapstructure:"message"`
}

type LLMConfig struct {
	Provider    string       `mapstructure:"provider"`
	MaxTokens   int          `mapstructure:"max_tokens"`
	Temperature float64      `mapstructure:"temperature"`
	Claude      ClaudeConfig `mapstructure:"claude"`
	OpenAI      OpenAIConfig `mapstructure:"openai"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type NotifierConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	BotToken string            `mapstructure:"bot_token"`
	ChatID   string            `mapstructure:"chat_id"`
	URL      string            `mapstructure:"url"`
	Headers  map[string]string `mapstructure:"headers"`
	Secret   string            `mapstructure:"secret"`
	Kinds    []string          `mapstructure:"kinds"` // empty receives every message kind
}

// envAliases lets a plain .env file with the bot's historical variable
// names configure the journal without a YAML file.
var envAliases = map[string][]string{
	"telegram.bot_token":     {"TELEGRAM_BOT_TOKEN", "BOT_TOKEN"},
	"telegram.admin_user_id": {"TELEGRAM_ADMIN_USER_ID", "ADMIN_USER_ID"},
	"storage.driver":         {"STORAGE_DRIVER"},
	"storage.dsn":            {"STORAGE_DSN", "DATABASE_URL"},
	"storage.path":           {"STORAGE_PATH"},
	"schedule.timezone":      {"SCHEDULE_TIMEZONE"},
	"server.api_key":         {"SERVER_API_KEY"},
	"llm.provider":           {"LLM_PROVIDER"},
	"llm.claude.api_key":     {"LLM_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
	"llm.openai.api_key":     {"LLM_OPENAI_API_KEY", "OPENAI_API_KEY"},
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from file on top of Defaults. An empty path
// configures from the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, envs := range envAliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Telegram: TelegramConfig{
			PollTimeout: 30 * time.Second,
			APIURL:      "https://api.telegram.org",
		},
		Storage: StorageConfig{
			Driver:    "sqlite",
			Path:      "journal.db",
			MaxTrades: 10000,
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "archive",
		},
		Schedule: ScheduleConfig{
			Enabled:  true,
			Timezone: "Europe/Moscow",
			Daily:    "0 20 * * *",
			Weekly:   "0 18 * * 0",
		},
		Journal: JournalConfig{
			LateNightHour:   22,
			MinLosingStreak: 3,
			ReportDays:      7,
			RecentLimit:     5,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		LLM: LLMConfig{
			MaxTokens:   600,
			Temperature: 0.4,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Telegram validation
	if c.Telegram.BotToken != "" && c.Telegram.AdminUserID == 0 {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("telegram admin_user_id required when bot_token is set"))
	}
	if c.Telegram.PollTimeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("poll_timeout cannot be negative, got %s", c.Telegram.PollTimeout))
	}

	// Storage validation
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage dsn required when driver is postgres"))
		}
	case "sqlite":
		if c.Storage.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage path required when driver is sqlite"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	// Archive validation
	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive path required when type is localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive s3 bucket required when type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type %q", c.Archive.Type))
		}
	}

	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("schedule timezone %q: %w", c.Schedule.Timezone, err))
	}

	// Journal validation
	if c.Journal.LateNightHour < 0 || c.Journal.LateNightHour > 23 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("late_night_hour must be between 0 and 23, got %d", c.Journal.LateNightHour))
	}
	if c.Journal.MinLosingStreak < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_losing_streak must be positive, got %d", c.Journal.MinLosingStreak))
	}
	if c.Journal.ReportDays < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("report_days must be positive, got %d", c.Journal.ReportDays))
	}
	if c.Journal.RecentLimit < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("recent_limit must be positive, got %d", c.Journal.RecentLimit))
	}
	for word, dir := range c.Journal.Directions {
		if dir != string(core.DirectionLong) && dir != string(core.DirectionShort) {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("direction %q maps to %q, want long or short", word, dir))
		}
	}

	// Server validation
	if c.Server.Enabled && (c.Server.Port < 1 || c.Server.Port > 65535) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	for _, r := range c.Alerts.Rules {
		if r.Scope != "trade" && r.Scope != "daily" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("alert %q: scope must be trade or daily, got %q", r.Name, r.Scope))
		}
	}

	// LLM validation - if provider set, check config exists
	switch strings.ToLower(strings.TrimSpace(c.LLM.Provider)) {
	case "":
	case "claude", "anthropic":
		if c.LLM.Claude.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("claude api_key required when provider is claude"))
		}
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("openai api_key required when provider is openai"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}

	return nil
}
