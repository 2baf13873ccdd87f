package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/vaultflow/internal/config"
	"github.com/phrazzld/vaultflow/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLevel slog.Level
		wantOK    bool
	}{
		{name: "debug", input: "debug", wantLevel: slog.LevelDebug, wantOK: true},
		{name: "upper_case", input: "WARN", wantLevel: slog.LevelWarn, wantOK: true},
		{name: "padded", input: " error ", wantLevel: slog.LevelError, wantOK: true},
		{name: "info", input: "info", wantLevel: slog.LevelInfo, wantOK: true},
		{name: "unknown", input: "verbose", wantLevel: slog.LevelInfo, wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			level, ok := logger.ParseLevel(tc.input)
			assert.Equal(t, tc.wantLevel, level)
			assert.Equal(t, tc.wantOK, ok)
		})
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	buf := &logger.TestLogBuffer{}
	l := logger.New(buf, "warn")

	l.Info("hidden")
	l.Warn("shown", "flow_id", "abc")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
	logger.AssertLogField(t, buf, "flow_id", "abc")
}

func TestNew_InvalidLevelWarns(t *testing.T) {
	buf := &logger.TestLogBuffer{}
	l := logger.New(buf, "chatty")

	logger.AssertLogContains(t, buf, "invalid log level configured")
	logger.AssertLogField(t, buf, "configured_level", "chatty")

	buf.Reset()
	l.Debug("below info")
	assert.Empty(t, buf.String())
}

func TestSetup_SetsDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	l, err := logger.Setup(config.ServerConfig{Port: 8080, LogLevel: "debug"})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Same(t, l, slog.Default())
}

func TestFromContext(t *testing.T) {
	t.Run("falls_back_to_default", func(t *testing.T) {
		assert.NotNil(t, logger.FromContext(context.Background()))
	})

	t.Run("uses_context_logger_and_request_id", func(t *testing.T) {
		ctx, buf := logger.NewCaptureContext(t)

		ctx = logger.WithRequestID(ctx, "req-42")
		logger.FromContext(ctx).Info("hello")

		logger.AssertLogField(t, buf, "request_id", "req-42")
		assert.Equal(t, []string{"hello"}, buf.Messages())
		assert.Equal(t, "req-42", logger.RequestID(ctx))
	})
}
