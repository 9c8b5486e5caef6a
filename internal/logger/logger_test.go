package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Development(t *testing.T) {
	log, err := New(Config{Development: true})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if log == nil {
		t.Fatal("expected non-nil logger")
	}

	// Should not panic
	log.Info("test message")

	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("development logger should log debug")
	}
}

func TestNew_Production(t *testing.T) {
	log, err := New(Config{})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("production logger should not log debug")
	}
}

func TestNew_Level(t *testing.T) {
	log, err := New(Config{Level: "warn", Encoding: "console"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}

	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestMust(t *testing.T) {
	// Should not panic
	log := Must(Config{Development: true})
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestMust_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid level")
		}
	}()
	Must(Config{Level: "nope"})
}
