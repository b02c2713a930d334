package exfat

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel_Ordering(t *testing.T) {
	assert.True(t, LevelError < LevelWarning)
	assert.True(t, LevelWarning < LevelInfo)
	assert.True(t, LevelInfo < LevelDebug)
}

func TestContext_NilIsSilent(t *testing.T) {
	var ctx *Context

	assert.NotPanics(t, func() {
		ctx.Warnf("this must not panic on a nil context")
	})
}

func TestParseLogLevel(t *testing.T) {
	level, ok := parseLogLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, LevelDebug, level)

	level, ok = parseLogLevel("warn")
	assert.True(t, ok)
	assert.Equal(t, LevelWarning, level)

	_, ok = parseLogLevel("nonsense")
	assert.False(t, ok)
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "debug", LevelDebug.String())
}

func TestNewContext_WritesToStderr(t *testing.T) {
	ctx := NewContext(LevelInfo)
	assert.Equal(t, os.Stderr, ctx.Out)
	assert.Equal(t, LevelInfo, ctx.Level)
}
