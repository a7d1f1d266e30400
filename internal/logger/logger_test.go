package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/refstars/bot/internal/config"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		log, err := New(config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("New(%s): %v", format, err)
		}
		if !log.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("%s: debug level should be enabled", format)
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
