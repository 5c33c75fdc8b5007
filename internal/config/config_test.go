package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"urlextract/internal/config"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: production
http:
  addr: ":9090"
  corsOrigins: ["https://a.example", "https://b.example"]
extractor:
  maxTextLength: 280
  dedupe: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	require.Equal(t, 280, cfg.Extractor.MaxTextLength)
	require.True(t, cfg.Extractor.Dedupe)

	// defaults
	require.Equal(t, "/metrics", cfg.HTTP.MetricsPath)
	require.Equal(t, 10*time.Second, cfg.HTTP.RequestTimeout)
	require.Equal(t, 100, cfg.Extractor.MaxBatchSize)
	require.Equal(t, "http", cfg.Extractor.DefaultScheme)
	require.Equal(t, 40, cfg.RateLimit.Burst)
	require.Equal(t, 10*time.Second, cfg.GracefulShutdownTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "extractor:\n  maxTextLength: 280\n")
	t.Setenv("EXTRACTOR_MAX_TEXT_LENGTH", "1000")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 1000, cfg.Extractor.MaxTextLength)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.HTTP.Addr)
	require.Equal(t, 4096, cfg.Extractor.MaxTextLength)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}
