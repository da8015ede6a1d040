package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/ytsub/internal/config"
	"github.com/backmassage/ytsub/internal/failure"
)

func newTestLogger(t *testing.T, level config.LogLevel) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	l, err := NewLogger(Options{
		Level:    level,
		Color:    config.ColorNever,
		DebugDir: t.TempDir(),
		Stdout:   &stdout,
		Stderr:   &stderr,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Cleanup(true) })
	return l, &stdout, &stderr
}

func readDebugLog(t *testing.T, l *Logger) string {
	t.Helper()
	b, err := os.ReadFile(l.DebugLogPath())
	require.NoError(t, err)
	return string(b)
}

func TestNewLogger_CreatesDebugFile(t *testing.T) {
	l, _, _ := newTestLogger(t, config.LogInfo)
	assert.FileExists(t, l.DebugLogPath())
	assert.True(t, strings.HasPrefix(filepath.Base(l.DebugLogPath()), "ytsub."))
	assert.Equal(t, ".log", filepath.Ext(l.DebugLogPath()))
}

func TestLevelFiltering(t *testing.T) {
	l, stdout, stderr := newTestLogger(t, config.LogQuiet)

	l.Info("hidden info")
	l.Debug("hidden debug")
	l.Warn("shown warning")
	l.Error("shown error")

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "[WARN] shown warning")
	assert.Contains(t, stderr.String(), "[ERROR] shown error")

	// The debug file gets everything.
	require.NoError(t, l.Cleanup(false))
	content := readDebugLog(t, l)
	for _, want := range []string{"hidden info", "hidden debug", "shown warning", "shown error"} {
		assert.Contains(t, content, want)
	}
}

func TestSetLevel(t *testing.T) {
	l, stdout, _ := newTestLogger(t, config.LogInfo)

	l.Verbose("before")
	l.SetLevel(config.LogVerbose)
	l.Verbose("after")

	assert.NotContains(t, stdout.String(), "before")
	assert.Contains(t, stdout.String(), "[VERBOSE] after")
}

func TestException(t *testing.T) {
	l, stdout, stderr := newTestLogger(t, config.LogInfo)

	l.Exception(failure.Internal(errors.New("boom"), "engine failed"), "An uncaught error occurred:")

	assert.Contains(t, stderr.String(), "[ERROR] An uncaught error occurred: engine failed: boom")
	// The trace stays out of the console at info level.
	assert.Empty(t, stdout.String())

	require.NoError(t, l.Cleanup(false))
	content := readDebugLog(t, l)
	assert.Contains(t, content, "[DEBUG] [internal] engine failed")
	assert.Contains(t, content, "TestException")
}

func TestCleanup(t *testing.T) {
	t.Run("keep", func(t *testing.T) {
		l, _, _ := newTestLogger(t, config.LogInfo)
		l.Info("x")
		require.NoError(t, l.Cleanup(false))
		assert.FileExists(t, l.DebugLogPath())
	})
	t.Run("delete", func(t *testing.T) {
		l, _, _ := newTestLogger(t, config.LogInfo)
		l.Info("x")
		require.NoError(t, l.Cleanup(true))
		assert.NoFileExists(t, l.DebugLogPath())
		// Second call is a no-op.
		require.NoError(t, l.Cleanup(true))
	})
}
