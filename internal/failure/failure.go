// Package failure defines the error kinds reported by the QOSST Scope tools.
//
// Every error returned by the loaders and the renderer wraps exactly one of
// these sentinels, so callers can classify a failure with errors.Is.
package failure

import "errors"

var (
	// ErrMissingFile is returned when an input file does not exist or cannot be read
	ErrMissingFile = errors.New("missing input file")

	// ErrFormat is returned when an input file is malformed
	ErrFormat = errors.New("format error")

	// ErrBounds is returned when the capture is shorter than the frame layout requires
	ErrBounds = errors.New("bounds error")

	// ErrOutputWrite is returned when the diagnostic image cannot be written
	ErrOutputWrite = errors.New("output write error")

	// ErrConfig is returned when the frame constants are inconsistent
	ErrConfig = errors.New("invalid configuration")
)

// Kind returns a short name for the failure class of err, or "unknown".
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrMissingFile):
		return "missing-file"
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrBounds):
		return "bounds"
	case errors.Is(err, ErrOutputWrite):
		return "output-write"
	case errors.Is(err, ErrConfig):
		return "config"
	default:
		return "unknown"
	}
}
