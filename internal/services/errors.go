package services

import "errors"

// Service-level sentinel errors, mapped to API errors by the transport
// layer.
var (
	// ErrFileNotFound indicates the requested file does not exist in the
	// data directory.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidPath indicates the requested file name would escape the
	// data directory.
	ErrInvalidPath = errors.New("invalid file path")

	// ErrUnsupportedFormat indicates the requested file is not a CSV or
	// Excel file.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
