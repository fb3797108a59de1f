package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize_DebugOffIsNoop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	t.Cleanup(CloseAll)

	require.NoError(t, Initialize(Options{DebugMode: false, Dir: dir}))
	assert.False(t, IsCategoryEnabled(CategorySession))

	Session("should not be written")
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "logs dir must not be created in production mode")
}

func TestInitialize_WritesCategorizedJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	t.Cleanup(CloseAll)

	require.NoError(t, Initialize(Options{DebugMode: true, Level: "debug", Dir: dir}))
	Session("credential confirmed", zap.String("stage", "chat"))
	API("upload finished")
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"logger":"session"`)
	assert.Contains(t, out, `"msg":"credential confirmed"`)
	assert.Contains(t, out, `"logger":"api"`)
	assert.Contains(t, out, `"logging initialized"`)
}

func TestInitialize_RequiresDir(t *testing.T) {
	t.Cleanup(CloseAll)
	assert.Error(t, Initialize(Options{DebugMode: true}))
}

func TestCategoryFilter(t *testing.T) {
	t.Cleanup(CloseAll)
	core, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(core))

	mu.Lock()
	opts.Categories = map[string]bool{"feedback": false}
	mu.Unlock()

	Get(CategoryFeedback).Info("muted")
	Get(CategoryAPI).Info("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "api", entry.LoggerName)
}

func TestGet_CachesPerCategory(t *testing.T) {
	t.Cleanup(CloseAll)
	core, _ := observer.New(zapcore.InfoLevel)
	Use(zap.New(core))

	assert.Same(t, Get(CategoryUI), Get(CategoryUI))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"LOUD":    zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(strings.TrimSpace(in)), in)
	}
}
