package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantLevel zapcore.Level
	}{
		{
			name:      "development config",
			config:    Config{Level: "debug", Environment: "development", ServiceName: "test-service"},
			wantLevel: zapcore.DebugLevel,
		},
		{
			name:      "production config",
			config:    Config{Level: "warn", Environment: "production", ServiceName: "prod-service"},
			wantLevel: zapcore.WarnLevel,
		},
		{
			name:      "invalid level defaults to info",
			config:    Config{Level: "loud", Environment: "development", ServiceName: "test-service"},
			wantLevel: zapcore.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !l.zap.Core().Enabled(tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && l.zap.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("expected level %v to be disabled", tt.wantLevel-1)
			}
		})
	}
}

func TestLoggerOutput(t *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	l := &Logger{zap: zap.New(core)}

	l.Info("info message", zap.String("key", "value"))
	if observed.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", observed.Len())
	}
	entry := observed.All()[0]
	if entry.Message != "info message" {
		t.Errorf("expected message 'info message', got %q", entry.Message)
	}
	if entry.ContextMap()["key"] != "value" {
		t.Errorf("expected key=value, got %v", entry.ContextMap()["key"])
	}

	observed.TakeAll()
	l.Error("error message", errors.New("boom"))
	entry = observed.All()[0]
	if entry.ContextMap()["error"] != "boom" {
		t.Errorf("expected error field, got %v", entry.ContextMap()["error"])
	}

	observed.TakeAll()
	l.Debug("debug message")
	if observed.Len() != 0 {
		t.Errorf("expected debug entry to be suppressed, got %d entries", observed.Len())
	}
}

func TestWithAndNamed(t *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	l := &Logger{zap: zap.New(core)}

	l.With(zap.String("shard", "v_part1")).Named("store").Info("child message")

	if observed.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", observed.Len())
	}
	entry := observed.All()[0]
	if entry.ContextMap()["shard"] != "v_part1" {
		t.Errorf("expected shard field, got %v", entry.ContextMap()["shard"])
	}
	if entry.LoggerName != "store" {
		t.Errorf("expected logger name 'store', got %q", entry.LoggerName)
	}
}
