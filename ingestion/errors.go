package ingestion

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrExtractorRequired is returned when a text extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrPipelineBusy is returned when every worker is occupied and the
	// document cannot be scheduled. The document is recorded as Failed.
	ErrPipelineBusy = errors.New("ingestion pipeline busy")

	// ErrPipelineClosed is returned by Ingest after Close.
	ErrPipelineClosed = errors.New("ingestion pipeline closed")

	// ErrDimensionChanged is returned when the embedder produces vectors of
	// different lengths for chunks of the same document.
	ErrDimensionChanged = errors.New("embedding dimension changed")
)
