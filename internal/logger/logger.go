package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger flavor
type Config struct {
	Development bool
	Level       string // debug, info, warn, error; empty keeps the preset's level
	Encoding    string // console or json; empty keeps the preset's encoding
}

// New creates a new zap logger
func New(cfg Config) (*zap.Logger, error) {
	var zc zap.Config

	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}

	return zc.Build(zap.Fields(zap.String("service", "trading-journal")))
}

// Must creates a logger or panics
func Must(cfg Config) *zap.Logger {
	log, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return log
}
