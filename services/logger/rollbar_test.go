package logsvc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/user"
)

func newObservedLogger(t *testing.T) (*RollbarLogger, *observer.ObservedLogs) {
	t.Helper()
	obsCore, logs := observer.New(zapcore.DebugLevel)
	logger := NewRollbarLogger(zap.New(obsCore), core.NewTestConfig())
	logger.Enable(false)
	return logger, logs
}

func TestRollbarLogger(t *testing.T) {
	logger, logs := newObservedLogger(t)

	usr := user.User{ID: "u1", Name: "Ann", Email: "ann@mail.com"}
	logger.Error("boom", errors.New("db down"), map[string]interface{}{"path": "/api/courses"}, usr)
	logger.Info("hello")
	logger.Debug("details", 42)

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "db down", ctx["error"])
	assert.Equal(t, "/api/courses", ctx["path"])
	assert.Equal(t, "u1", ctx["user_id"])

	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Empty(t, entries[1].ContextMap())

	assert.Equal(t, int64(42), entries[2].ContextMap()["extra"])
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger, _ := newObservedLogger(t)

	err := errors.New("oops")
	usr1 := user.User{ID: "u1"}
	usr2 := user.User{ID: "u2"}
	got := logger.prepare("msg", []interface{}{err, usr1, usr2})
	assert.Equal(t, []interface{}{"msg", err}, got)
}
