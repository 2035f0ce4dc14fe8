// Package pdf exposes RFQ document operations to the binaries: path
// confinement, file validation, text acquisition and item extraction.
package pdf

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-rfq-extractor/internal/items"
	"github.com/a3tai/mcp-rfq-extractor/internal/pdf/acquire"
	"github.com/a3tai/mcp-rfq-extractor/internal/pdf/security"
)

// Options configures a Service
type Options struct {
	MaxFileSize int64
	Directory   string
	Acquire     acquire.Options
	Pipeline    []items.Option
	Logger      *zap.Logger
}

// Service handles document operations by orchestrating the components
type Service struct {
	maxFileSize   int64
	validator     *Validator
	pathValidator *security.PathValidator
	acquirer      *acquire.Acquirer
	pipeline      *items.Pipeline
	normalize     items.NormalizeOptions
	logger        *zap.Logger
}

// NewService creates a new service with all components
func NewService(opts Options) (*Service, error) {
	pathValidator, err := security.NewPathValidator(opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Acquire.Logger == nil {
		opts.Acquire.Logger = opts.Logger
	}

	s := &Service{
		maxFileSize:   opts.MaxFileSize,
		validator:     NewValidator(opts.MaxFileSize),
		pathValidator: pathValidator,
		acquirer:      acquire.New(opts.Acquire),
		logger:        opts.Logger.Named("service"),
	}

	s.pipeline = items.New(append([]items.Option{items.WithLogger(opts.Logger)}, opts.Pipeline...)...)
	s.normalize = s.pipeline.NormalizeOptions()

	return s, nil
}

// ExtractItems runs the full pipeline on one document. When no backend
// produces usable text the error is an *acquire.Failure and no result
// is returned.
func (s *Service) ExtractItems(ctx context.Context, req ExtractItemsRequest) (*ExtractItemsResult, error) {
	path, err := s.checkDocument(req.Path)
	if err != nil {
		return nil, err
	}

	src := &documentSource{acquirer: s.acquirer, doc: acquire.Document{Path: path}}
	result, err := s.pipeline.Run(ctx, src)
	if err != nil {
		s.logger.Warn("text acquisition failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	return &ExtractItemsResult{
		Path:    path,
		Backend: src.backend,
		Result:  result,
	}, nil
}

// ExtractText returns the acquired text, normalized unless Raw is set
func (s *Service) ExtractText(ctx context.Context, req ExtractTextRequest) (*ExtractTextResult, error) {
	path, err := s.checkDocument(req.Path)
	if err != nil {
		return nil, err
	}

	text, err := s.acquirer.Acquire(ctx, acquire.Document{Path: path})
	if err != nil {
		return nil, err
	}

	out := &ExtractTextResult{
		Path:       path,
		Backend:    text.Backend,
		Text:       text.Content,
		Fragmented: items.IsFragmented(text.Content, s.normalize.FragmentationThreshold),
	}
	if !req.Raw {
		out.Text = items.NormalizeWith(text.Content, s.normalize)
		out.Normalized = true
	}
	out.Length = len(out.Text)
	return out, nil
}

// ValidateFile performs validation on a document
func (s *Service) ValidateFile(req ValidateFileRequest) (*ValidateFileResult, error) {
	path, err := s.pathValidator.SanitizePath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Path = path
	return s.validator.ValidateFile(req)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// GetConfiguredDirectory returns the documents root
func (s *Service) GetConfiguredDirectory() string {
	return s.pathValidator.GetConfiguredDirectory()
}

// Backends lists the acquisition cascade in order
func (s *Service) Backends() []string {
	return s.acquirer.Backends()
}

// checkDocument confines and validates a requested path
func (s *Service) checkDocument(requested string) (string, error) {
	path, err := s.pathValidator.SanitizePath(requested)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	if _, err := s.validator.validatePDFFile(path); err != nil {
		return "", fmt.Errorf("invalid document: %w", err)
	}
	return path, nil
}

// documentSource adapts the acquisition cascade to the pipeline
type documentSource struct {
	acquirer *acquire.Acquirer
	doc      acquire.Document
	backend  string
}

func (d *documentSource) Text(ctx context.Context) (string, error) {
	text, err := d.acquirer.Acquire(ctx, d.doc)
	if err != nil {
		return "", err
	}
	d.backend = text.Backend
	return text.Content, nil
}
