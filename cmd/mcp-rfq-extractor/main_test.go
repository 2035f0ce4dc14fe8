package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-rfq-extractor/internal/config"
)

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	defer func() { version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit }()

	version, buildTime, gitCommit = "1.2.3", "2024-05-01_10:30:00", "abc123"

	var buf bytes.Buffer
	printVersion(&buf)

	out := buf.String()
	assert.Contains(t, out, "MCP RFQ Extractor")
	assert.Contains(t, out, "Version: 1.2.3")
	assert.Contains(t, out, "Build Time: 2024-05-01_10:30:00")
	assert.Contains(t, out, "Git Commit: abc123")
	assert.Contains(t, out, "Built with: go")
}

func TestLoggingOptions(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		level string
		want  string
	}{
		{"stdio default is quiet", config.ModeStdio, "info", "warn"},
		{"stdio debug kept", config.ModeStdio, "debug", "debug"},
		{"stdio error kept", config.ModeStdio, "error", "error"},
		{"server info kept", config.ModeServer, "info", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Mode, cfg.LogLevel = tt.mode, tt.level
			cfg.LogFile = "/var/log/rfq.log"

			opts := loggingOptions(cfg)
			assert.Equal(t, tt.want, opts.Level)
			assert.Equal(t, "/var/log/rfq.log", opts.File)
			assert.Equal(t, os.Stderr, opts.Console)
		})
	}
}

func TestRun_CancelledStdio(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PDFDirectory = t.TempDir()
	cfg.LogLevel = "debug"
	cfg.LogFile = filepath.Join(t.TempDir(), "rfq.log")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, run(ctx, cfg))
	_, err := os.Stat(cfg.LogFile)
	assert.NoError(t, err)
}
