package logger

import (
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is a printf-style wrapper around a zap sugared logger
type Logger struct {
	sugar     *zap.SugaredLogger
	channelID string
}

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base  = newBase(level)
)

// newBase builds the console logger shared by every channel
func newBase(lvl zap.AtomicLevel) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeCaller = nil

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stdout),
		lvl,
	)
	return zap.New(core)
}

// New creates a new logger with the given channel ID
func New(channelID string) *Logger {
	l := base
	if channelID != "" {
		l = l.Named(channelID)
	}
	return &Logger{
		sugar:     l.Sugar(),
		channelID: channelID,
	}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// NewTest returns a logger that writes through the test's log
func NewTest(t testing.TB) *Logger {
	return &Logger{sugar: zaptest.NewLogger(t).Sugar()}
}

// Channel returns the channel this logger was created for
func (l *Logger) Channel() string {
	return l.channelID
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Sync flushes buffered entries
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

// SetLevel changes the level of every logger created by New.
// Unknown names leave the level untouched and return false.
func SetLevel(name string) bool {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return false
	}
	level.SetLevel(lvl)
	return true
}

// Global logger instance for application-wide logging
var Global = New("")

// SetGlobal sets the global logger
func SetGlobal(logger *Logger) {
	Global = logger
}
