package acquire

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoUsableText is wrapped by every *Failure
	ErrNoUsableText = errors.New("could not extract text; document may be image-based")

	// ErrBackendUnavailable marks a backend whose tool is not installed
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrInvalidDocument is returned when a Document sets both or neither of Path and Data
	ErrInvalidDocument = errors.New("document must set exactly one of path or data")
)

// BackendError reports a failure inside one backend
type BackendError struct {
	Backend string `json:"backend"`
	Op      string `json:"operation"`
	Err     error  `json:"error"`
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend error in %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Attempt records the outcome of one backend run
type Attempt struct {
	Backend string `json:"backend"`
	Length  int    `json:"length"`
	Err     error  `json:"-"`
}

// Skipped reports whether the backend was not available at all
func (a Attempt) Skipped() bool {
	return errors.Is(a.Err, ErrBackendUnavailable)
}

// Failure is returned when no backend produced usable text
type Failure struct {
	Attempts []Attempt
}

func (f *Failure) Error() string {
	if len(f.Attempts) == 0 {
		return ErrNoUsableText.Error()
	}
	parts := make([]string, 0, len(f.Attempts))
	for _, a := range f.Attempts {
		switch {
		case a.Skipped():
			parts = append(parts, a.Backend+": unavailable")
		case a.Err != nil:
			parts = append(parts, a.Backend+": "+a.Err.Error())
		default:
			parts = append(parts, fmt.Sprintf("%s: %d characters", a.Backend, a.Length))
		}
	}
	return fmt.Sprintf("%s (%s)", ErrNoUsableText, strings.Join(parts, "; "))
}

func (f *Failure) Unwrap() error {
	return ErrNoUsableText
}
