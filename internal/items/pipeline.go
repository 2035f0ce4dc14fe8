package items

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Source produces the raw text of one document
type Source interface {
	Text(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) (string, error)

// Text calls f(ctx)
func (f SourceFunc) Text(ctx context.Context) (string, error) {
	return f(ctx)
}

// PostProcessor may replace a finished result before it is returned
type PostProcessor func(Result) Result

// Pipeline runs normalize, segment, extract and validate over one
// document's text. It holds configuration only and is safe to share.
type Pipeline struct {
	logger        *zap.Logger
	normalize     NormalizeOptions
	segment       SegmentOptions
	postProcessor PostProcessor
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger used for run diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithNormalizeOptions overrides the normalizer thresholds
func WithNormalizeOptions(opts NormalizeOptions) Option {
	return func(p *Pipeline) {
		p.normalize = opts
	}
}

// WithSegmentOptions overrides the segmenter thresholds
func WithSegmentOptions(opts SegmentOptions) Option {
	return func(p *Pipeline) {
		p.segment = opts
	}
}

// WithPostProcessor installs a hook that may rewrite the final result
func WithPostProcessor(fn PostProcessor) Option {
	return func(p *Pipeline) {
		p.postProcessor = fn
	}
}

// New creates a pipeline with default thresholds and a no-op logger
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:    zap.NewNop(),
		normalize: DefaultNormalizeOptions(),
		segment:   DefaultSegmentOptions(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NormalizeOptions returns the normalizer settings in effect
func (p *Pipeline) NormalizeOptions() NormalizeOptions {
	return p.normalize
}

// Run acquires text from src and processes it. An acquisition error is
// returned as-is and no later stage runs.
func (p *Pipeline) Run(ctx context.Context, src Source) (Result, error) {
	if src == nil {
		return Result{}, errors.New("items: nil source")
	}
	text, err := src.Text(ctx)
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return p.Process(text), nil
}

// Process extracts items from already acquired text
func (p *Pipeline) Process(text string) Result {
	log := p.logger.With(zap.String("run_id", uuid.NewString()))

	normalized := NormalizeWith(text, p.normalize)
	log.Debug("text normalized",
		zap.Int("raw_length", len(text)),
		zap.Int("normalized_length", len(normalized)),
		zap.Bool("fragmented", IsFragmented(sanitize(text), p.normalize.FragmentationThreshold)))

	seg := SegmentWith(normalized, p.segment)
	log.Debug("text segmented",
		zap.String("strategy", string(seg.Strategy)),
		zap.Int("candidates", seg.Len()))

	var extracted []Item
	if len(seg.Items) > 0 {
		extracted = seg.Items
	} else {
		extracted = make([]Item, 0, len(seg.Sections))
		for _, section := range seg.Sections {
			extracted = append(extracted, Extract(section))
		}
	}

	result := NewResult(ValidateAll(extracted))
	log.Info("extraction finished",
		zap.String("status", string(result.Status)),
		zap.Int("items", result.ItemsDetected),
		zap.Int("needs_review", result.NeedsReview()))

	if p.postProcessor != nil {
		result = p.postProcessor(result)
	}
	return result
}
