package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	return pflag.NewFlagSet("rfq-test", pflag.ContinueOnError)
}

// clearEnv makes sure no RFQ_EXTRACT_* variable leaks in from the host
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "stdio", cfg.Mode)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "mcp-rfq-extractor", cfg.ServerName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, int64(100*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, 50, cfg.MinTextLength)
	assert.InDelta(t, 0.3, cfg.FragmentRatio, 1e-9)
	assert.Equal(t, 20, cfg.MarkerMinLen)
	assert.Equal(t, 50, cfg.SectionMinLen)
	assert.Equal(t, 30*time.Second, cfg.AttemptTimeout)
	assert.Equal(t, "pdftotext", cfg.PDFToText)
	assert.Equal(t, "python3", cfg.Python)
	assert.Equal(t, 4, cfg.Concurrency)

	currentDir, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, currentDir, cfg.PDFDirectory)
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "server mode", modify: func(c *Config) { c.Mode = ModeServer }},
		{name: "invalid mode", modify: func(c *Config) { c.Mode = "invalid" }, wantErr: "mode must be"},
		{
			name:    "port too low in server mode",
			modify:  func(c *Config) { c.Mode, c.Port = ModeServer, 0 },
			wantErr: "port must be",
		},
		{
			name:    "port too high in server mode",
			modify:  func(c *Config) { c.Mode, c.Port = ModeServer, 70000 },
			wantErr: "port must be",
		},
		{name: "port ignored in stdio mode", modify: func(c *Config) { c.Port = 0 }},
		{name: "empty directory", modify: func(c *Config) { c.PDFDirectory = "" }, wantErr: "cannot be empty"},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "verbose" }, wantErr: "invalid log level"},
		{name: "zero max file size", modify: func(c *Config) { c.MaxFileSize = 0 }, wantErr: "maximum file size"},
		{name: "zero min text length", modify: func(c *Config) { c.MinTextLength = 0 }, wantErr: "minimum text length"},
		{name: "fragment ratio zero", modify: func(c *Config) { c.FragmentRatio = 0 }, wantErr: "fragment ratio"},
		{name: "fragment ratio above one", modify: func(c *Config) { c.FragmentRatio = 1.5 }, wantErr: "fragment ratio"},
		{name: "fragment ratio one", modify: func(c *Config) { c.FragmentRatio = 1 }},
		{name: "negative section length", modify: func(c *Config) { c.SectionMinLen = -1 }, wantErr: "section length"},
		{name: "zero timeout", modify: func(c *Config) { c.AttemptTimeout = 0 }, wantErr: "attempt timeout"},
		{name: "no pdftotext", modify: func(c *Config) { c.PDFToText = "" }, wantErr: "executables"},
		{name: "zero concurrency", modify: func(c *Config) { c.Concurrency = 0 }, wantErr: "concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.PDFDirectory = dir
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigValidate_CreatesDirectory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PDFDirectory = filepath.Join(t.TempDir(), "rfqs", "incoming")

	require.NoError(t, cfg.Validate())

	info, err := os.Stat(cfg.PDFDirectory)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoad_Flags(t *testing.T) {
	clearEnv(t, "RFQ_EXTRACT_MODE", "RFQ_EXTRACT_PORT", "RFQ_EXTRACT_ATTEMPTTIMEOUT", "RFQ_EXTRACT_CONCURRENCY")
	dir := t.TempDir()

	cfg, err := Load(newFlagSet(), []string{
		"--mode=server", "--host=0.0.0.0", "--port=9090", "--dir=" + dir,
		"--loglevel=debug", "--attempttimeout=45s", "--fragmentratio=0.25", "--concurrency=2",
	})
	require.NoError(t, err)

	assert.True(t, cfg.IsServerMode())
	assert.False(t, cfg.IsStdioMode())
	assert.True(t, cfg.IsDebug())
	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
	assert.Equal(t, dir, cfg.PDFDirectory)
	assert.Equal(t, 45*time.Second, cfg.AttemptTimeout)
	assert.InDelta(t, 0.25, cfg.FragmentRatio, 1e-9)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestLoad_Environment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RFQ_EXTRACT_DIR", dir)
	t.Setenv("RFQ_EXTRACT_MINTEXTLENGTH", "80")
	t.Setenv("RFQ_EXTRACT_PYTHON", "/opt/python/bin/python3")
	t.Setenv("RFQ_EXTRACT_CONCURRENCY", "8")

	cfg, err := Load(newFlagSet(), []string{"--concurrency=3"})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.PDFDirectory)
	assert.Equal(t, 80, cfg.MinTextLength)
	assert.Equal(t, "/opt/python/bin/python3", cfg.Python)
	assert.Equal(t, 3, cfg.Concurrency, "flags win over the environment")
}

func TestLoad_CallerFlags(t *testing.T) {
	flags := newFlagSet()
	format := flags.String("format", "text", "output format")

	cfg, err := Load(flags, []string{"--dir=" + t.TempDir(), "--format=json", "a.pdf", "b.pdf"})
	require.NoError(t, err)

	assert.NotNil(t, cfg)
	assert.Equal(t, "json", *format)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, flags.Args())
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t, "RFQ_EXTRACT_MODE", "RFQ_EXTRACT_LOGLEVEL")

	_, err := Load(newFlagSet(), []string{"--version"})
	assert.ErrorIs(t, err, ErrVersionRequested)

	_, err = Load(newFlagSet(), []string{"--dir=" + t.TempDir(), "--loglevel=chatty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = Load(newFlagSet(), []string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t, "RFQ_EXTRACT_PDFTOTEXT", "RFQ_EXTRACT_HOST")
	t.Setenv("RFQ_EXTRACT_HOST", "10.0.0.1")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"RFQ_EXTRACT_PDFTOTEXT=/usr/local/bin/pdftotext\nRFQ_EXTRACT_HOST=0.0.0.0\n"), 0o600))

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "/usr/local/bin/pdftotext", os.Getenv("RFQ_EXTRACT_PDFTOTEXT"))
	assert.Equal(t, "10.0.0.1", os.Getenv("RFQ_EXTRACT_HOST"), "existing variables are kept")

	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.String()

	assert.Contains(t, s, "Mode: stdio")
	assert.Contains(t, s, "AttemptTimeout: 30s")
}
