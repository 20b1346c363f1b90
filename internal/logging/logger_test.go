package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cfgpkg "github.com/taoyao-code/btwattch2-collector/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestNewLogger_JSONAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "collector.log")
	var buf bytes.Buffer

	log := newLogger(cfgpkg.LoggingConfig{
		Level:  "info",
		Format: "json",
		File:   cfgpkg.LumberjackConfig{Filename: file, MaxSizeMB: 1},
	}, zapcore.AddSync(&buf))
	log.Debug("hidden")
	log.Info("sample emitted", zap.String("addr", "AA:BB:CC:DD:EE:FF"))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "sample emitted", entry["msg"])
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", entry["addr"])
	assert.Equal(t, "info", entry["level"])

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sample emitted")
	assert.NotContains(t, string(data), "hidden")
}

func TestNewLogger_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(cfgpkg.LoggingConfig{Level: "debug", Format: "console"}, zapcore.AddSync(&buf))
	log.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
