package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jaennil/brutile/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewZapLogger(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		l, err := NewZapLogger(config.Logger{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("NewZapLogger(%q) failed: %v", format, err)
		}
		if !l.logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("format %q: debug level not enabled", format)
		}
	}

	l, err := NewZapLogger(config.Logger{Level: "error"})
	if err != nil {
		t.Fatalf("NewZapLogger failed: %v", err)
	}
	if l.logger.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Errorf("warn enabled at error level")
	}
}

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Info("tile fetched", "level", 3, "size", 1024)
	l.Debug("cache miss")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["level"] != int64(3) || ctx["size"] != int64(1024) {
		t.Errorf("unexpected fields: %v", ctx)
	}
	if entries[1].Level != zapcore.DebugLevel {
		t.Errorf("second entry level = %v, want debug", entries[1].Level)
	}
}

func TestFromContext(t *testing.T) {
	if _, ok := FromContext(context.Background()).(*noOpLogger); !ok {
		t.Errorf("FromContext without logger should return no-op logger")
	}

	core, _ := observer.New(zapcore.InfoLevel)
	l := NewFromZap(zap.New(core))
	ctx := WithLogger(context.Background(), l)
	if got := FromContext(ctx); got != Logger(l) {
		t.Errorf("FromContext returned %v, want stored logger", got)
	}
}
