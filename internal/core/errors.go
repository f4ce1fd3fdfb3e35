package core

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var (
	// ErrEmptyImage is returned when the input raster has no pixels.
	ErrEmptyImage = errors.New("image is empty")
	// ErrDegenerateSize is returned when a stage would produce a zero-sized image.
	ErrDegenerateSize = errors.New("degenerate image size")
	// ErrImageTooLarge is returned when an input or intermediate image exceeds the size limit.
	ErrImageTooLarge = errors.New("image too large")
)

// UnsupportedFormatError reports an input whose channel layout or bit depth
// cannot be normalized to one the stages support.
type UnsupportedFormatError struct {
	Channels int
	Depth    gocv.MatType
	Reason   string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported image format (channels=%d, depth=%d): %s", e.Channels, e.Depth, e.Reason)
}

// ProcessingError wraps any failure inside a pipeline stage. The whole
// image is abandoned; no partial result is returned.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing failed at stage %q: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
