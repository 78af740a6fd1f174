package platform

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle_StartAndStop(t *testing.T) {
	lc := NewLifecycle()

	var calls []string
	lc.OnStart("a", func(context.Context) error { calls = append(calls, "start a"); return nil })
	lc.OnStop("a", func(context.Context) error { calls = append(calls, "stop a"); return nil })
	lc.OnStart("b", func(context.Context) error { calls = append(calls, "start b"); return nil })
	lc.OnStop("b", func(context.Context) error { calls = append(calls, "stop b"); return nil })

	require.NoError(t, lc.Start(context.Background()))
	assert.True(t, lc.IsStarted())

	require.NoError(t, lc.Stop(context.Background()))
	assert.False(t, lc.IsStarted())
	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, calls)
}

func TestLifecycle_StartAlreadyStarted(t *testing.T) {
	lc := NewLifecycle()
	require.NoError(t, lc.Start(context.Background()))
	assert.Error(t, lc.Start(context.Background()))
}

func TestLifecycle_StopNotStarted(t *testing.T) {
	lc := NewLifecycle()
	stopped := false
	lc.OnStop("x", func(context.Context) error { stopped = true; return nil })

	assert.NoError(t, lc.Stop(context.Background()))
	assert.False(t, stopped)
}

func TestLifecycle_StartRollbackOnError(t *testing.T) {
	lc := NewLifecycle()

	var calls []string
	lc.OnStart("first", func(context.Context) error { calls = append(calls, "start first"); return nil })
	lc.OnStop("first", func(context.Context) error { calls = append(calls, "stop first"); return nil })
	lc.OnStart("second", func(context.Context) error { return errors.New("boom") })
	lc.OnStop("second", func(context.Context) error { calls = append(calls, "stop second"); return nil })

	err := lc.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting second")
	assert.False(t, lc.IsStarted())
	assert.Equal(t, []string{"start first", "stop first"}, calls)
}

func TestLifecycle_StopJoinsErrors(t *testing.T) {
	lc := NewLifecycle()
	lc.OnStop("a", func(context.Context) error { return errors.New("a failed") })
	lc.OnStop("b", func(context.Context) error { return errors.New("b failed") })
	require.NoError(t, lc.Start(context.Background()))

	err := lc.Stop(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopping a")
	assert.Contains(t, err.Error(), "stopping b")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestLifecycle_ShutdownWithoutStart(t *testing.T) {
	lc := NewLifecycle()
	closed := 0
	lc.RegisterCloser("c", closerFunc(func() error { closed++; return nil }))

	require.NoError(t, lc.Shutdown(context.Background()))
	assert.Equal(t, 1, closed)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf).Info("hidden")
	assert.Empty(t, buf.String())

	NewLogger(LogConfig{Level: "debug", Format: "json"}, &buf).Debug("shown", "session_id", "s1")
	assert.Contains(t, buf.String(), `"session_id":"s1"`)

	buf.Reset()
	NewLogger(LogConfig{Level: "info", Format: "text"}, &buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")

	assert.Equal(t, slog.LevelError, parseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLevel("unknown"))
}
