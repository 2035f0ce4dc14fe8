package pdf

import (
	"go.uber.org/zap"

	"github.com/a3tai/mcp-rfq-extractor/internal/config"
	"github.com/a3tai/mcp-rfq-extractor/internal/items"
	"github.com/a3tai/mcp-rfq-extractor/internal/pdf/acquire"
)

// OptionsFromConfig maps the shared configuration onto service options
func OptionsFromConfig(cfg *config.Config, logger *zap.Logger) Options {
	return Options{
		MaxFileSize: cfg.MaxFileSize,
		Directory:   cfg.PDFDirectory,
		Logger:      logger,
		Acquire: acquire.Options{
			MinTextLength:  cfg.MinTextLength,
			AttemptTimeout: cfg.AttemptTimeout,
			PDFToText:      cfg.PDFToText,
			Python:         cfg.Python,
			Logger:         logger,
		},
		Pipeline: []items.Option{
			items.WithNormalizeOptions(items.NormalizeOptions{FragmentationThreshold: cfg.FragmentRatio}),
			items.WithSegmentOptions(items.SegmentOptions{
				MinMarkerSectionLength: cfg.MarkerMinLen,
				MinSectionLength:       cfg.SectionMinLen,
			}),
		},
	}
}

// NewServiceFromConfig builds the service the binaries run with
func NewServiceFromConfig(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	return NewService(OptionsFromConfig(cfg, logger))
}
