package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_ParsesLevel(t *testing.T) {
	log, err := New("debug", true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New("warn", false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", false)
	assert.Error(t, err)
}

func TestGooseAdapter_PrintfLogsAtInfo(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	adapter := GooseAdapter{Log: zap.New(core).Sugar()}

	adapter.Printf("OK   %s (%s)", "00001_office_defaults.sql", "1ms")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "OK   00001_office_defaults.sql (1ms)", logs.All()[0].Message)
}
