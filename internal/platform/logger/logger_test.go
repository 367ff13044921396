package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/vocal-api/internal/config"
)

func TestSetupReturnsLoggerForEachLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN", "Info"} {
		l := Setup(config.ServerConfig{LogLevel: level})
		require.NotNil(t, l, "level %q", level)
	}
}

func TestSetupFallsBackToInfoOnInvalidLevel(t *testing.T) {
	l := Setup(config.ServerConfig{LogLevel: "verbose"})
	require.NotNil(t, l)
	assert.True(t, l.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
}

func TestSetupSetsDefaultLogger(t *testing.T) {
	l := Setup(config.ServerConfig{LogLevel: "debug"})
	assert.Equal(t, l.Handler(), slog.Default().Handler())
}
