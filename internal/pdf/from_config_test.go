package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-rfq-extractor/internal/config"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PDFDirectory = t.TempDir()
	cfg.MinTextLength = 80
	cfg.AttemptTimeout = time.Minute
	cfg.PDFToText = "/opt/poppler/bin/pdftotext"
	cfg.FragmentRatio = 0.4

	opts := OptionsFromConfig(cfg, zap.NewNop())
	assert.Equal(t, cfg.PDFDirectory, opts.Directory)
	assert.Equal(t, 80, opts.Acquire.MinTextLength)
	assert.Equal(t, time.Minute, opts.Acquire.AttemptTimeout)
	assert.Equal(t, "/opt/poppler/bin/pdftotext", opts.Acquire.PDFToText)
	assert.Len(t, opts.Pipeline, 2)

	svc, err := NewServiceFromConfig(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.InDelta(t, 0.4, svc.normalize.FragmentationThreshold, 1e-9)
	assert.Equal(t,
		[]string{"pdftotext-layout", "pdftotext-raw", "pdftotext-stream", "native", "script", "structural"},
		svc.Backends())
}
