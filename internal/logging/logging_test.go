package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New("debug", "console")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Errorf("debug level should be enabled")
	}

	if _, err := New("loud", "json"); err == nil {
		t.Errorf("expected error for unknown level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Errorf("expected error for unknown format")
	}
}
