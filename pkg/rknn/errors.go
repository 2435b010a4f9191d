package rknn

import "errors"

var (
	// ErrInvalidMagic means the file does not start with the RKNN signature.
	ErrInvalidMagic = errors.New("invalid RKNN magic")

	// ErrUnsupportedVersion means the header declares a format revision
	// whose layout this package does not know.
	ErrUnsupportedVersion = errors.New("unsupported RKNN format version")

	// ErrTruncated means a computed offset or length falls outside the file.
	ErrTruncated = errors.New("truncated RKNN file")

	// ErrMalformedMetadata means the textual trailer is not parseable.
	// It is recoverable while the tabular payload is usable.
	ErrMalformedMetadata = errors.New("malformed trailer metadata")

	// ErrEmptyModel means neither payload yielded usable graph data.
	ErrEmptyModel = errors.New("container holds no usable model description")
)
