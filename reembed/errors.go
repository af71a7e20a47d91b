package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrDimensionChanged is returned when the embedder produces vectors of
	// different lengths within one run
	ErrDimensionChanged = errors.New("embedding dimension changed during reembedding")
)
