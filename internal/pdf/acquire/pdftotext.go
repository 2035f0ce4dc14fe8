package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// PDFToTextMode selects how poppler's pdftotext lays out its output
type PDFToTextMode string

const (
	ModeLayout PDFToTextMode = "layout"
	ModeRaw    PDFToTextMode = "raw"
	ModeStream PDFToTextMode = "stream"
)

// PDFToText runs the pdftotext CLI. Layout and raw modes write to a temp
// file; stream mode reads stdout.
type PDFToText struct {
	Mode     PDFToTextMode
	Binary   string
	Runner   Runner
	LookPath LookPathFunc
	TempDir  string
}

func (p *PDFToText) Name() string {
	return "pdftotext-" + string(p.Mode)
}

func (p *PDFToText) Extract(ctx context.Context, path string) (string, error) {
	if _, err := p.LookPath(p.Binary); err != nil {
		return "", &BackendError{Backend: p.Name(), Op: "lookup", Err: fmt.Errorf("%w: %s", ErrBackendUnavailable, p.Binary)}
	}

	// pdftotext [-layout|-raw] -enc UTF-8 -eol unix <in.pdf> <out|->
	args := []string{"-enc", "UTF-8", "-eol", "unix"}
	switch p.Mode {
	case ModeLayout:
		args = append([]string{"-layout"}, args...)
	case ModeRaw:
		args = append([]string{"-raw"}, args...)
	case ModeStream:
		out, errb, err := p.Runner.Run(ctx, p.Binary, append(args, path, "-")...)
		if err != nil {
			return "", &BackendError{Backend: p.Name(), Op: "run", Err: commandError(err, errb)}
		}
		return string(out), nil
	default:
		return "", &BackendError{Backend: p.Name(), Op: "run", Err: fmt.Errorf("unknown mode %q", p.Mode)}
	}

	tmpDir, err := os.MkdirTemp(p.TempDir, "rfq-pdftotext-*")
	if err != nil {
		return "", &BackendError{Backend: p.Name(), Op: "tempdir", Err: err}
	}
	defer os.RemoveAll(tmpDir)

	outPath := filepath.Join(tmpDir, "out.txt")
	_, errb, err := p.Runner.Run(ctx, p.Binary, append(args, path, outPath)...)
	if err != nil {
		return "", &BackendError{Backend: p.Name(), Op: "run", Err: commandError(err, errb)}
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return "", &BackendError{Backend: p.Name(), Op: "read", Err: err}
	}
	return string(data), nil
}
