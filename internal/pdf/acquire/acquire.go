// Package acquire turns a PDF document into raw text by trying a fixed
// cascade of extraction backends and keeping the first usable result.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultMinTextLength is the trimmed length a result must exceed
	DefaultMinTextLength = 50

	// DefaultAttemptTimeout bounds each backend attempt
	DefaultAttemptTimeout = 30 * time.Second

	DefaultPDFToText = "pdftotext"
	DefaultPython    = "python3"
)

// Document is a PDF given either as a file path or as raw bytes
type Document struct {
	Path string
	Data []byte
}

// Text is the output of the first successful backend
type Text struct {
	Content string `json:"content"`
	Backend string `json:"backend"`
}

// Backend is one way of getting text out of a PDF file
type Backend interface {
	Name() string
	Extract(ctx context.Context, path string) (string, error)
}

// Options configures an Acquirer. Zero values take the defaults.
type Options struct {
	MinTextLength  int
	AttemptTimeout time.Duration
	PDFToText      string
	Python         string
	TempDir        string
	Runner         Runner
	LookPath       LookPathFunc
	Logger         *zap.Logger

	// Backends replaces the default cascade when set
	Backends []Backend
}

// Acquirer runs the backend cascade. It keeps no per-document state and
// may be shared between goroutines.
type Acquirer struct {
	backends []Backend
	minLen   int
	timeout  time.Duration
	tempDir  string
	logger   *zap.Logger
}

// New builds an Acquirer from opts
func New(opts Options) *Acquirer {
	if opts.MinTextLength <= 0 {
		opts.MinTextLength = DefaultMinTextLength
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = DefaultAttemptTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.Named("acquire")

	backends := opts.Backends
	if len(backends) == 0 {
		backends = DefaultBackends(opts)
	}

	return &Acquirer{
		backends: backends,
		minLen:   opts.MinTextLength,
		timeout:  opts.AttemptTimeout,
		tempDir:  opts.TempDir,
		logger:   logger,
	}
}

// DefaultBackends returns the standard cascade: pdftotext in layout, raw
// and stream modes, the native library, the python script and finally the
// structural content-stream scan.
func DefaultBackends(opts Options) []Backend {
	if opts.PDFToText == "" {
		opts.PDFToText = DefaultPDFToText
	}
	if opts.Python == "" {
		opts.Python = DefaultPython
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{Logger: opts.Logger}
	}
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}

	pdftotext := func(mode PDFToTextMode) Backend {
		return &PDFToText{
			Mode:     mode,
			Binary:   opts.PDFToText,
			Runner:   opts.Runner,
			LookPath: opts.LookPath,
			TempDir:  opts.TempDir,
		}
	}

	return []Backend{
		pdftotext(ModeLayout),
		pdftotext(ModeRaw),
		pdftotext(ModeStream),
		&Native{},
		&Script{
			Interpreter: opts.Python,
			Runner:      opts.Runner,
			LookPath:    opts.LookPath,
			TempDir:     opts.TempDir,
		},
		&Structural{},
	}
}

// Backends lists the backend names in cascade order
func (a *Acquirer) Backends() []string {
	names := make([]string, len(a.backends))
	for i, b := range a.backends {
		names[i] = b.Name()
	}
	return names
}

// Acquire returns the first backend result whose trimmed length exceeds
// the minimum. When none does, the error is a *Failure wrapping
// ErrNoUsableText. A byte-buffer document is written to a temp file that
// is removed before Acquire returns.
func (a *Acquirer) Acquire(ctx context.Context, doc Document) (*Text, error) {
	path, cleanup, err := a.materialize(doc)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	failure := &Failure{}
	for _, backend := range a.backends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		content, err := a.attempt(ctx, backend, path)
		length := len(strings.TrimSpace(content))
		log := a.logger.With(
			zap.String("backend", backend.Name()),
			zap.Int("length", length),
			zap.Duration("duration", time.Since(start)))

		if err == nil && length > a.minLen {
			log.Info("text acquired")
			return &Text{Content: content, Backend: backend.Name()}, nil
		}

		if err == nil {
			err = fmt.Errorf("text too short: %d characters", length)
		}
		failure.Attempts = append(failure.Attempts, Attempt{Backend: backend.Name(), Length: length, Err: err})
		if errors.Is(err, ErrBackendUnavailable) {
			log.Debug("backend skipped", zap.Error(err))
		} else {
			log.Debug("backend attempt rejected", zap.Error(err))
		}
	}

	a.logger.Warn("no backend produced usable text", zap.Int("attempts", len(failure.Attempts)))
	return nil, failure
}

func (a *Acquirer) attempt(ctx context.Context, backend Backend, path string) (string, error) {
	actx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return backend.Extract(actx, path)
}

// materialize resolves a Document to a file path. The cleanup func is
// always safe to call.
func (a *Acquirer) materialize(doc Document) (string, func(), error) {
	noop := func() {}
	hasPath, hasData := doc.Path != "", len(doc.Data) > 0
	if hasPath == hasData {
		return "", noop, ErrInvalidDocument
	}
	if hasPath {
		return doc.Path, noop, nil
	}

	f, err := os.CreateTemp(a.tempDir, "rfq-doc-*.pdf")
	if err != nil {
		return "", noop, fmt.Errorf("create temp document: %w", err)
	}
	cleanup := func() {
		if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
			a.logger.Warn("failed to remove temp document", zap.String("path", f.Name()), zap.Error(err))
		}
	}

	if _, err := f.Write(doc.Data); err != nil {
		f.Close()
		cleanup()
		return "", noop, fmt.Errorf("write temp document: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("close temp document: %w", err)
	}
	return f.Name(), cleanup, nil
}
