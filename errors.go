package jobpdf

import (
	"errors"
	"fmt"

	"github.com/revuapp/jobpdf/imgprobe"
)

// Sentinel errors for report rendering failures.
var (
	// ErrUnsupportedImageFormat reports an attachment that is not a PNG or
	// JPEG, or whose header is truncated.
	ErrUnsupportedImageFormat = imgprobe.ErrUnsupportedFormat

	ErrRenderIO        = errors.New("jobpdf: writing document failed")
	ErrInvalidRecord   = errors.New("jobpdf: invalid report record")
	ErrUnknownTemplate = errors.New("jobpdf: unknown template")
	ErrInvalidParam    = errors.New("jobpdf: invalid parameter")
)

// RenderError represents an error that occurred during a specific rendering
// step. It wraps an underlying error and names the step for context.
type RenderError struct {
	Op  string // step name, e.g. "Gallery", "Output"
	Err error  // underlying error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jobpdf.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("jobpdf.%s: unknown error", e.Op)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func newRenderError(op string, err error) *RenderError {
	return &RenderError{Op: op, Err: err}
}

// ImageError describes an attachment that could not be placed in the
// gallery. Index is the attachment's position in the record.
type ImageError struct {
	Index int
	Name  string
	Err   error
}

func (e *ImageError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("photo %d (%s): %v", e.Index+1, e.Name, e.Err)
	}
	return fmt.Sprintf("photo %d: %v", e.Index+1, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}
