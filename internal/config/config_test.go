package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.True(t, filepath.IsAbs(cfg.Paths.DataDir))
	assert.True(t, filepath.IsAbs(cfg.Paths.ReportsDir))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COLSUM_SERVER_PORT", "9090")
	t.Setenv("COLSUM_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	content := "server:\n  port: 7070\nlogging:\n  level: warn\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	t.Setenv("COLSUM_CONFIG_FILE", file)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 7070\n"), 0644))
	t.Setenv("COLSUM_CONFIG_FILE", file)
	t.Setenv("COLSUM_SERVER_PORT", "9191")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "COLSUM_SERVER_PORT", "70000"},
		{"bad log level", "COLSUM_LOGGING_LEVEL", "verbose"},
		{"bad log output", "COLSUM_LOGGING_OUTPUT", "syslog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Paths: PathsConfig{
			DataDir:    filepath.Join(dir, "data"),
			ReportsDir: filepath.Join(dir, "data", "reports"),
			LogsDir:    filepath.Join(dir, "logs"),
		},
	}

	require.NoError(t, cfg.EnsureDirectories())

	for _, d := range []string{cfg.Paths.DataDir, cfg.Paths.ReportsDir, cfg.Paths.LogsDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPathHelpers(t *testing.T) {
	cfg := &Config{
		Paths: PathsConfig{
			DataDir:    "/srv/colsum/data",
			ReportsDir: "/srv/colsum/data/reports",
			LogsDir:    "/srv/colsum/logs",
		},
	}

	assert.Equal(t, "/srv/colsum/data/sales.csv", cfg.GetDataPath("sales.csv"))
	assert.Equal(t, "/srv/colsum/data/reports/out.csv", cfg.GetReportPath("out.csv"))
	assert.Equal(t, "/srv/colsum/logs/colsum.log", cfg.GetLogPath("colsum.log"))
}
