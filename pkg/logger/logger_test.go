package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("development"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestGet_BeforeInit(t *testing.T) {
	l := Get()
	require.NotNil(t, l)
	l.Info("not initialized", zap.String("k", "v"))
}

func TestInit(t *testing.T) {
	err := Init(&Config{Level: "debug", ServiceName: "test", Development: true})
	require.NoError(t, err)
	defer Sync()

	l := Get()
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	l.With(zap.Int64("user_id", 7)).Debug("initialized")
}
