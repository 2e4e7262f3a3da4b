package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	defer level.SetLevel(zapcore.InfoLevel)

	tests := []struct {
		name string
		ok   bool
		want zapcore.Level
	}{
		{"debug", true, zapcore.DebugLevel},
		{"WARN", true, zapcore.WarnLevel},
		{" error ", true, zapcore.ErrorLevel},
		{"verbose", false, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, SetLevel(tt.name))
			assert.Equal(t, tt.want, level.Level())
		})
	}
}

func TestNewChannel(t *testing.T) {
	l := New("scraper")
	assert.Equal(t, "scraper", l.Channel())

	// Logging through every level must not panic.
	l.Debug("debug %d", 1)
	l.Info("info %s", "x")
	l.Warn("warn")
	l.Error("error %v", assert.AnError)

	NewNop().Info("discarded")
	NewTest(t).Info("through testing.T")
}
