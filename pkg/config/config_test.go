package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.OutputPath)
	assert.Equal(t, SinkStdout, cfg.Emitter.Sink)
	assert.Empty(t, cfg.Emitter.Path)
	assert.Equal(t, int32(24), cfg.Display.Decimals)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
emitter:
  sink: file
  path: /tmp/events.log
display:
  decimals: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.OutputPath)
	assert.Equal(t, SinkFile, cfg.Emitter.Sink)
	assert.Equal(t, "/tmp/events.log", cfg.Emitter.Path)
	assert.Equal(t, int32(0), cfg.Display.Decimals)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FASTBRIDGE_EMITTER_SINK", "zap")
	t.Setenv("FASTBRIDGE_DISPLAY_DECIMALS", "18")

	path := writeConfig(t, "emitter:\n  sink: stderr\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SinkZap, cfg.Emitter.Sink)
	assert.Equal(t, int32(18), cfg.Display.Decimals)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown sink", "emitter:\n  sink: kafka\n", "config.emitter.sink"},
		{"file sink without path", "emitter:\n  sink: file\n", "config.emitter.path"},
		{"too many decimals", "display:\n  decimals: 39\n", "config.display.decimals"},
		{"negative decimals", "display:\n  decimals: -1\n", "config.display.decimals"},
		{"bad level", "logging:\n  level: loud\n", "config.logging.level"},
		{"bad format", "logging:\n  format: xml\n", "config.logging.format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestNewLogger(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	logger, err := NewLogger(cfg.Logging)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.Logging.Format = "json"
	cfg.Logging.OutputPath = filepath.Join(t.TempDir(), "app.log")
	logger, err = NewLogger(cfg.Logging)
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())
	data, err := os.ReadFile(cfg.Logging.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)

	cfg.Logging.Level = "off"
	logger, err = NewLogger(cfg.Logging)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(0))

	cfg.Logging.Level = "loud"
	_, err = NewLogger(cfg.Logging)
	assert.Error(t, err)
}
