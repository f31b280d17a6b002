package descriptors

import "errors"

var (
	// ErrInvalidDescriptor is returned when a descriptor file is malformed
	ErrInvalidDescriptor = errors.New("invalid descriptor")

	// ErrUnsupportedFormat is returned for files that are neither YAML nor HCL
	ErrUnsupportedFormat = errors.New("unsupported descriptor format")
)
