package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestFromEnvKeepsBaseWhenUnset(t *testing.T) {
	t.Setenv("WHY_LOG_LEVEL", "")
	t.Setenv("WHY_LOG_ENCODING", "")
	t.Setenv("WHY_LOG_DEVELOPMENT", "")

	cfg := FromEnv(Config{Level: "debug", Encoding: "console", Development: true})
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "console", cfg.Encoding)
	assert.True(t, cfg.Development)
}

func TestFromEnvOverridesBase(t *testing.T) {
	t.Setenv("WHY_LOG_LEVEL", "error")
	t.Setenv("WHY_LOG_ENCODING", "json")
	t.Setenv("WHY_LOG_DEVELOPMENT", "false")

	cfg := FromEnv(Config{Level: "debug", Encoding: "console", Development: true})
	assert.Equal(t, "error", cfg.Level)
	assert.Equal(t, "json", cfg.Encoding)
	assert.False(t, cfg.Development)
}

func TestInitLoggerHonorsConfiguredLevel(t *testing.T) {
	logger, err := InitLogger(Config{Level: "debug", Encoding: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = InitLogger(Config{Level: "error"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
}
