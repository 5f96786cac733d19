package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	quiet := NewLogger(false)
	if quiet.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("non-verbose logger should not enable debug")
	}

	verbose := NewLogger(true)
	if !verbose.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("verbose logger should enable debug")
	}
}

func TestNamedKeepsLogger(t *testing.T) {
	l := NewNop().Named("pipeline")
	if l == nil || l.SugaredLogger == nil {
		t.Fatal("Named returned nil logger")
	}
	l.Infow("discarded", "key", "value")
	l.Sync()
}
