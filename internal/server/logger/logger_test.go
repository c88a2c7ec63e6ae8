package logger

import (
	"context"
	"testing"

	contextutils "github.com/danilofalcao/llama-relay/internal/utils/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level LogLevel) (*Logger, *observer.ObservedLogs, chan string) {
	core, logs := observer.New(zapcore.DebugLevel)
	exitCh := make(chan string, 1)
	return New("test", level, exitCh, zap.New(core)), logs, exitCh
}

func TestLevelFromString(t *testing.T) {
	tests := map[string]LogLevel{
		"trace":   TRACE,
		"DEBUG":   DEBUG,
		"info":    INFO,
		" warn ":  WARN,
		"warning": WARN,
		"error":   ERROR,
		"panic":   FATAL,
		"":        INFO,
		"verbose": INFO,
	}
	for in, want := range tests {
		assert.Equal(t, want, LevelFromString(in), "input %q", in)
	}
	assert.Equal(t, "WARN", LogLevel(WARN).String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestLogger_LevelFiltering(t *testing.T) {
	lgr, logs, _ := newObserved(WARN)
	ctx := context.Background()

	lgr.Trace(ctx, "trace")
	lgr.Debugf(ctx, "debug %d", 1)
	lgr.Info(ctx, "info")
	lgr.Warnf(ctx, "warn %s", "me")
	lgr.Error(ctx, "error")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "warn me", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "error", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestLogger_Trace(t *testing.T) {
	lgr, logs, _ := newObserved(TRACE)
	lgr.Tracef(context.Background(), "step %d", 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "step 3", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, true, entries[0].ContextMap()["trace"])
}

func TestLogger_RequestID(t *testing.T) {
	lgr, logs, _ := newObserved(INFO)
	ctx := contextutils.WithRequestID(context.Background(), "req-1")

	lgr.Info(ctx, "with id")
	lgr.Info(context.Background(), "without id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}

func TestLogger_Clone(t *testing.T) {
	lgr, logs, _ := newObserved(DEBUG)
	reqCtx := contextutils.WithRequestID(context.Background(), "req-2")

	child, ctx := lgr.Clone(reqCtx, "ollama")
	assert.Equal(t, "ollama", child.Name())
	assert.Equal(t, LogLevel(DEBUG), child.Level())
	assert.Equal(t, "req-2", contextutils.GetRequestID(ctx))

	child.Debug(ctx, "from child")
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "test.ollama", entries[0].LoggerName)
	assert.Equal(t, "req-2", entries[0].ContextMap()["request_id"])
}

func TestLogger_Fatal(t *testing.T) {
	lgr, logs, exitCh := newObserved(INFO)
	lgr.Fatalf(context.Background(), "cannot bind %s", ":3000")

	assert.Equal(t, "cannot bind :3000", <-exitCh)
	require.Len(t, logs.All(), 1)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}

func TestLogger_FatalDoesNotBlock(t *testing.T) {
	lgr, logs, exitCh := newObserved(INFO)
	ctx := context.Background()

	lgr.Fatal(ctx, "first")
	lgr.Fatal(ctx, "second")

	assert.Equal(t, "first", <-exitCh)
	assert.Len(t, logs.All(), 2)

	// No exit channel at all, as with the fallback logger.
	core, _ := observer.New(zapcore.DebugLevel)
	New("nochan", INFO, nil, zap.New(core)).Fatal(ctx, "dropped")
}
