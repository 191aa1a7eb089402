package testutils

import (
	"testing"

	"github.com/edaniels/golog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// NewObservedLogger directs logs, debug level included, to the go test logger and saves them to an
// in memory observer.
func NewObservedLogger(t *testing.T) (golog.Logger, *observer.ObservedLogs) {
	logger := zaptest.NewLogger(t, zaptest.Level(zapcore.DebugLevel))
	observerCore, observedLogs := observer.New(zap.LevelEnablerFunc(zapcore.DebugLevel.Enabled))
	logger = logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, observerCore)
	}))
	return logger.Sugar(), observedLogs
}
