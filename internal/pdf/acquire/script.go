package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// pageTextScript prints the text of every page, one page per block
const pageTextScript = `import sys
from pypdf import PdfReader

reader = PdfReader(sys.argv[1])
for page in reader.pages:
    sys.stdout.write((page.extract_text() or "") + "\n")
`

// Script runs a python interpreter with a pypdf page-text script that is
// written to a temp file for the duration of the attempt.
type Script struct {
	Interpreter string
	Runner      Runner
	LookPath    LookPathFunc
	TempDir     string
}

func (*Script) Name() string {
	return "script"
}

func (s *Script) Extract(ctx context.Context, path string) (string, error) {
	if _, err := s.LookPath(s.Interpreter); err != nil {
		return "", &BackendError{Backend: s.Name(), Op: "lookup", Err: fmt.Errorf("%w: %s", ErrBackendUnavailable, s.Interpreter)}
	}

	tmpDir, err := os.MkdirTemp(s.TempDir, "rfq-script-*")
	if err != nil {
		return "", &BackendError{Backend: s.Name(), Op: "tempdir", Err: err}
	}
	defer os.RemoveAll(tmpDir)

	scriptPath := filepath.Join(tmpDir, "page_text.py")
	if err := os.WriteFile(scriptPath, []byte(pageTextScript), 0o600); err != nil {
		return "", &BackendError{Backend: s.Name(), Op: "write", Err: err}
	}

	out, errb, err := s.Runner.Run(ctx, s.Interpreter, scriptPath, path)
	if err != nil {
		return "", &BackendError{Backend: s.Name(), Op: "run", Err: commandError(err, errb)}
	}
	return string(out), nil
}
