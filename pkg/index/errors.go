package index

import (
	"fmt"

	"emperror.dev/errors"
)

const ErrFormat = errors.Sentinel("malformed index")

// FormatError describes why an index buffer could not be decoded.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("index at offset %d: %s", e.Offset, e.Reason)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func formatErrorf(offset int, format string, args ...interface{}) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
