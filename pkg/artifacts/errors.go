package artifacts

import "errors"

var (
	// ErrUploadFailed is returned when an S3 upload fails
	ErrUploadFailed = errors.New("upload failed")

	// ErrWriterClosed is returned when writing to a committed or aborted writer
	ErrWriterClosed = errors.New("artifact writer already closed")

	// ErrInvalidPath is returned for absolute paths or paths escaping the root
	ErrInvalidPath = errors.New("invalid artifact path")

	// ErrUnknownSink is returned for an unsupported sink kind
	ErrUnknownSink = errors.New("unknown sink")
)
