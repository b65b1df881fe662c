package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelWarn},
		{in: "debug", want: slog.LevelDebug},
		{in: " INFO ", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, done, err := Setup(Config{Level: "info", Writer: &buf})
	require.NoError(t, err)
	defer done()

	logger.Debug("hidden")
	logger.Info("shown", "rows", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "rows=3")
}

func TestSetupVerboseForcesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, done, err := Setup(Config{Level: "error", Verbose: true, Writer: &buf})
	require.NoError(t, err)
	defer done()

	logger.Debug("details")
	assert.Contains(t, buf.String(), "details")
}

func TestSetupRejectsBadLevel(t *testing.T) {
	_, _, err := Setup(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestMultiHandlerFansOut(t *testing.T) {
	var debugBuf, errorBuf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	logger := slog.New(h).With("component", "engine").WithGroup("run")

	logger.Info("transformed", "rows", 2)
	logger.Error("failed", "rows", 0)

	assert.Contains(t, debugBuf.String(), "component=engine")
	assert.Contains(t, debugBuf.String(), "run.rows=2")
	assert.Contains(t, debugBuf.String(), "failed")
	assert.NotContains(t, errorBuf.String(), "transformed")
	assert.Contains(t, errorBuf.String(), "failed")
}
