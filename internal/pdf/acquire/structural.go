package acquire

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Structural is the last-resort backend: it decodes page content streams
// and scans them for text-showing operators. pdfcpu supplies the streams
// when it can parse the file; otherwise raw stream blocks are inflated.
type Structural struct{}

func (*Structural) Name() string {
	return "structural"
}

func (s *Structural) Extract(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &BackendError{Backend: s.Name(), Op: "extract", Err: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &BackendError{Backend: s.Name(), Op: "read", Err: err}
	}

	if streams, perr := pageContents(ctx, data); perr == nil {
		text = scanStreams(streams)
	}
	if strings.TrimSpace(text) == "" {
		text = scanStreams(rawStreams(data))
	}
	if err := ctx.Err(); err != nil {
		return "", &BackendError{Backend: s.Name(), Op: "extract", Err: err}
	}
	return text, nil
}

// pdfcpu otherwise creates a config dir under the user's home on first use
var disableConfigDir sync.Once

// pageContents returns the decoded content stream of every page, in page order
func pageContents(ctx context.Context, data []byte) ([][]byte, error) {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	var streams [][]byte
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil || len(content) == 0 {
			continue
		}
		streams = append(streams, content)
	}
	return streams, nil
}

var rawStreamRe = regexp.MustCompile(`(?s)stream\r?\n(.*?)\r?\nendstream`)

// rawStreams pulls every stream body out of the file bytes, inflating
// the ones that are zlib-compressed.
func rawStreams(data []byte) [][]byte {
	var streams [][]byte
	for _, m := range rawStreamRe.FindAllSubmatch(data, -1) {
		body := m[1]
		if inflated := inflate(body); len(inflated) > 0 {
			body = inflated
		}
		streams = append(streams, body)
	}
	return streams
}

func inflate(data []byte) []byte {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	defer zr.Close()
	// a truncated stream still yields a usable prefix
	out, _ := io.ReadAll(zr)
	return out
}

func scanStreams(streams [][]byte) string {
	var w textWriter
	for _, s := range streams {
		scanContent(s, &w)
		w.newline()
	}
	return w.String()
}
