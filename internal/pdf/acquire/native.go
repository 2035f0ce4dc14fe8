package acquire

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Native reads page text with github.com/ledongthuc/pdf
type Native struct{}

func (*Native) Name() string {
	return "native"
}

// Extract concatenates the plain text of every page. Pages that fail are
// skipped; a panic inside the library becomes the attempt's error.
func (n *Native) Extract(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &BackendError{Backend: n.Name(), Op: "extract", Err: fmt.Errorf("library panic: %v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", &BackendError{Backend: n.Name(), Op: "open", Err: err}
	}
	defer f.Close()

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", &BackendError{Backend: n.Name(), Op: "extract", Err: err}
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
