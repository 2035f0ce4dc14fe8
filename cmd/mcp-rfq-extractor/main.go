package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-rfq-extractor/internal/config"
	"github.com/a3tai/mcp-rfq-extractor/internal/logging"
	"github.com/a3tai/mcp-rfq-extractor/internal/mcp"
	"github.com/a3tai/mcp-rfq-extractor/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// loggingOptions picks log destinations for the mode. In stdio mode the
// MCP client owns stdout, so console output goes to stderr and is limited
// to warnings unless debug is enabled.
func loggingOptions(cfg *config.Config) logging.Options {
	opts := logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Console: os.Stderr}
	if cfg.IsStdioMode() && !cfg.IsDebug() && cfg.LogLevel == config.DefaultLogLevel {
		opts.Level = "warn"
	}
	return opts
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, cleanup, err := logging.New(loggingOptions(cfg))
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer cleanup()

	if version != "dev" {
		cfg.Version = version
	}
	logger.Debug("starting", zap.Stringer("config", cfg))

	pdfService, err := pdf.NewServiceFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create PDF service: %w", err)
	}

	server, err := mcp.NewServer(cfg, pdfService, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := server.Run(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP RFQ Extractor\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
