package index

import "errors"

var (
	// ErrVectorMismatch indicates chunk and vector counts differ.
	ErrVectorMismatch = errors.New("chunk and vector counts differ")

	// ErrEmptyVector indicates a query with an empty vector.
	ErrEmptyVector = errors.New("query vector is empty")

	// ErrIndexClosed indicates the index has been closed.
	ErrIndexClosed = errors.New("index is closed")
)
