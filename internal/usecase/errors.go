package usecase

import (
	"errors"
	"fmt"

	"github.com/jaennil/brutile/internal/tiling"
)

// Error kinds carried by FetchError.
var (
	ErrTransport        = errors.New("tile transport failed")
	ErrUnexpectedFormat = errors.New("unexpected tile format")
	ErrCancelled        = errors.New("tile fetch cancelled")
)

// FetchError reports a failed tile fetch. It matches its Kind and the
// underlying cause with errors.Is.
type FetchError struct {
	Index   tiling.TileIndex
	Locator string
	Kind    error
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("tile %s: %v", e.Index, e.Kind)
	}
	return fmt.Sprintf("tile %s: %v: %v", e.Index, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ErrorKind returns a short label for err: transport, format, cancelled or
// unknown.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.Is(err, ErrUnexpectedFormat):
		return "format"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}
