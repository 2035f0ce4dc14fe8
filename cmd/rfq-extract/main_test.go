package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/a3tai/mcp-rfq-extractor/internal/items"
	"github.com/a3tai/mcp-rfq-extractor/internal/pdf"
	"github.com/a3tai/mcp-rfq-extractor/internal/pdf/acquire"
)

const rfqText = "Item 1: Product Name: Oak Table Length (in): 24 Depth (in): 30 Height (in): 28 " +
	"Quantity: 2 Primary Material: Oak Finishes: Matte\n" +
	"Item 2: Product Name: Pine Bench Depth (in): 16 Height (in): 18 Quantity: 4 Primary Material: Pine"

// pathBackend returns text per file name; unknown files yield nothing
type pathBackend map[string]string

func (pathBackend) Name() string { return "fake" }

func (b pathBackend) Extract(_ context.Context, path string) (string, error) {
	return b[filepath.Base(path)], nil
}

func newBatchService(t *testing.T, texts pathBackend) (*pdf.Service, string) {
	t.Helper()
	dir := t.TempDir()
	for name := range texts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4\n"), 0o600))
	}
	svc, err := pdf.NewService(pdf.Options{
		MaxFileSize: 1024 * 1024,
		Directory:   dir,
		Acquire:     acquire.Options{Backends: []acquire.Backend{texts}},
	})
	require.NoError(t, err)
	return svc, dir
}

func TestExtractAll(t *testing.T) {
	svc, _ := newBatchService(t, pathBackend{"a.pdf": rfqText, "scan.pdf": ""})

	outcomes := extractAll(context.Background(), svc, []string{"a.pdf", "scan.pdf", "missing.pdf"}, 2)
	require.Len(t, outcomes, 3)

	assert.Equal(t, "a.pdf", outcomes[0].Input)
	require.NoError(t, outcomes[0].err)
	assert.Equal(t, 2, outcomes[0].ItemsDetected)
	assert.False(t, outcomes[0].failed())

	assert.ErrorIs(t, outcomes[1].err, acquire.ErrNoUsableText)
	assert.Nil(t, outcomes[1].ExtractItemsResult)
	assert.True(t, outcomes[1].failed())

	require.Error(t, outcomes[2].err)
	assert.Contains(t, outcomes[2].Error, "invalid document")
	assert.True(t, outcomes[2].failed())
}

func TestDeliverAll(t *testing.T) {
	svc, _ := newBatchService(t, pathBackend{"a.pdf": rfqText, "scan.pdf": ""})
	outcomes := extractAll(context.Background(), svc, []string{"a.pdf", "scan.pdf", "missing.pdf"}, 1)

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	deliverAll(context.Background(), outcomes, "", items.NewLogCollaborators(logger).Collaborators(), logger)

	saved := logs.FilterMessage("items saved").All()
	require.Len(t, saved, 2, "input errors are not delivered")
	assert.Equal(t, "a", saved[0].ContextMap()["project"])
	assert.Equal(t, "automatic", saved[0].ContextMap()["mode"])
	assert.Equal(t, "scan", saved[1].ContextMap()["project"])
	assert.Equal(t, "manual", saved[1].ContextMap()["mode"])

	flagged := logs.FilterMessage("item flagged for review").All()
	require.Len(t, flagged, 1)
	assert.Equal(t, int64(1), flagged[0].ContextMap()["index"])

	assert.Equal(t, 1, logs.FilterMessage("1 items need review out of 2 extracted").Len())
	assert.Equal(t, 1, logs.FilterMessage("extraction failed, administrator notified").Len())
}

func TestProjectIDFor(t *testing.T) {
	tests := []struct {
		name    string
		project string
		path    string
		total   int
		want    string
	}{
		{"file name", "", "/rfqs/hotel-lobby.pdf", 1, "hotel-lobby"},
		{"explicit project", "P-17", "/rfqs/hotel-lobby.pdf", 1, "P-17"},
		{"explicit project, many documents", "P-17", "lobby.PDF", 3, "P-17/lobby"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, projectIDFor(tt.project, tt.path, tt.total))
		})
	}
}

func TestWriteReport(t *testing.T) {
	svc, _ := newBatchService(t, pathBackend{"a.pdf": rfqText})
	outcomes := extractAll(context.Background(), svc, []string{"a.pdf", "missing.pdf"}, 2)

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeReport(&buf, formatText, outcomes))
		out := buf.String()
		assert.Contains(t, out, "Items detected: 2 (1 need review)")
		assert.Contains(t, out, "1. Oak Table [extracted]")
		assert.Contains(t, out, "RFQ items for: missing.pdf\nError: invalid document")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeReport(&buf, formatJSON, outcomes))

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 2)
		assert.Equal(t, "a.pdf", decoded[0]["input"])
		assert.Equal(t, "fake", decoded[0]["backend"])
		assert.Equal(t, "success", decoded[0]["status"])
		assert.NotContains(t, decoded[0], "error")
		assert.Equal(t, "missing.pdf", decoded[1]["input"])
		assert.NotContains(t, decoded[1], "items")
		assert.Contains(t, decoded[1]["error"], "invalid document")
	})
}

func TestRun(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		args   []string
		code   int
		stdout string
		stderr string
	}{
		{"version", []string{"--version"}, exitOK, "rfq-extract dev", ""},
		{"no documents", []string{"--dir", dir}, exitUsage, "", "at least one PDF path required"},
		{"bad format", []string{"--dir", dir, "--format", "xml", "a.pdf"}, exitUsage, "", "unsupported format"},
		{"bad config", []string{"--dir", dir, "--concurrency", "0", "a.pdf"}, exitUsage, "", "invalid configuration"},
		{"missing document", []string{"--dir", dir, "--deliver", "missing.pdf"}, exitFailures, "Error: invalid document", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, tt.code, code, stderr.String())
			assert.Contains(t, stdout.String(), tt.stdout)
			assert.Contains(t, stderr.String(), tt.stderr)
		})
	}
}
