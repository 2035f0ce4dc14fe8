package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/a3tai/mcp-rfq-extractor/internal/config"
	"github.com/a3tai/mcp-rfq-extractor/internal/items"
	"github.com/a3tai/mcp-rfq-extractor/internal/logging"
	"github.com/a3tai/mcp-rfq-extractor/internal/pdf"
	"github.com/a3tai/mcp-rfq-extractor/internal/pdf/acquire"
)

const (
	formatText = "text"
	formatJSON = "json"

	exitOK       = 0
	exitFailures = 1
	exitUsage    = 2
)

var version = "dev" // This will be set by build flags

// options are the flags only the batch CLI understands
type options struct {
	format  string
	project string
	deliver bool
}

// outcome is the per-document report entry
type outcome struct {
	Input string `json:"input"`
	*pdf.ExtractItemsResult
	Error string `json:"error,omitempty"`

	err error
}

func (o outcome) failed() bool {
	return o.err != nil || o.ExtractItemsResult == nil || !o.Succeeded()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("rfq-extract", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	var opts options
	flags.StringVar(&opts.format, "format", formatText, "Output format: text, json")
	flags.StringVar(&opts.project, "project", "", "Project ID for delivery (default: document file name)")
	flags.BoolVar(&opts.deliver, "deliver", false, "Route every outcome to the item store, review flagger and notifier")

	cfg, err := config.Load(flags, args)
	if errors.Is(err, config.ErrVersionRequested) {
		fmt.Fprintf(stdout, "rfq-extract %s\n", version)
		return exitOK
	}
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitUsage
	}
	if opts.format != formatText && opts.format != formatJSON {
		fmt.Fprintf(stderr, "Error: unsupported format %q (use text or json)\n", opts.format)
		return exitUsage
	}
	paths := flags.Args()
	if len(paths) == 0 {
		fmt.Fprintf(stderr, "Error: at least one PDF path required\n\n")
		fmt.Fprintf(stderr, "Usage: rfq-extract [options] <file.pdf>...\n")
		return exitUsage
	}

	logger, cleanup, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Console: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to set up logging: %v\n", err)
		return exitUsage
	}
	defer cleanup()

	svc, err := pdf.NewServiceFromConfig(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create PDF service: %v\n", err)
		return exitUsage
	}

	outcomes := extractAll(ctx, svc, paths, cfg.Concurrency)
	if opts.deliver {
		deliverAll(ctx, outcomes, opts.project, items.NewLogCollaborators(logger).Collaborators(), logger)
	}

	if err := writeReport(stdout, opts.format, outcomes); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailures
	}

	for _, o := range outcomes {
		if o.failed() {
			return exitFailures
		}
	}
	return exitOK
}

// extractAll runs one pipeline per document, at most limit at a time.
// Outcomes keep the order of paths.
func extractAll(ctx context.Context, svc *pdf.Service, paths []string, limit int) []outcome {
	outcomes := make([]outcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			res, err := svc.ExtractItems(gctx, pdf.ExtractItemsRequest{Path: path})
			o := outcome{Input: path, ExtractItemsResult: res, err: err}
			if err != nil {
				o.Error = err.Error()
			}
			outcomes[i] = o
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// deliverAll hands every extracted or unreadable document to the
// collaborators. Input errors (missing file, not a PDF) never reached the
// pipeline and are only reported.
func deliverAll(ctx context.Context, outcomes []outcome, project string, c items.Collaborators, logger *zap.Logger) {
	for _, o := range outcomes {
		projectID := projectIDFor(project, o.Input, len(outcomes))

		var failure *acquire.Failure
		var err error
		switch {
		case o.err == nil:
			err = items.Deliver(ctx, projectID, &o.Result, nil, c)
		case errors.As(o.err, &failure):
			err = items.Deliver(ctx, projectID, nil, o.err, c)
		default:
			continue
		}
		if err != nil {
			logger.Warn("delivery failed", zap.String("project", projectID), zap.Error(err))
		}
	}
}

// projectIDFor names the project a document belongs to. With several
// documents an explicit project gets the file name appended.
func projectIDFor(project, path string, total int) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch {
	case project == "":
		return name
	case total > 1:
		return project + "/" + name
	default:
		return project
	}
}

func writeReport(w io.Writer, format string, outcomes []outcome) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcomes); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		return nil
	}

	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(w, "\n---")
		}
		if o.err != nil {
			fmt.Fprintf(w, "RFQ items for: %s\nError: %s\n", o.Input, o.Error)
			continue
		}
		fmt.Fprintln(w, pdf.FormatItems(o.ExtractItemsResult))
	}
	return nil
}
