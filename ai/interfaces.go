package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Reranker scores a batch of texts against a query with a cross-encoder.
// Implementations must be thread-safe for concurrent use.
type Reranker interface {
	// Rerank returns up to topN results, each naming a position in documents
	// and its relevance score. Results are not guaranteed to be sorted.
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]RerankResult, error)
}

// RerankResult is a single scored position returned by a Reranker.
type RerankResult struct {
	// Index is the position of the scored text in the request batch.
	Index int

	// Score is the relevance score reported by the service.
	Score float64
}

// Synthesizer writes an answer to a question from retrieved passages.
// Implementations must be thread-safe for concurrent use.
type Synthesizer interface {
	// Synthesize answers question using only the supplied passages, which
	// are ordered most relevant first.
	Synthesize(ctx context.Context, question string, passages []string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages the services, ensuring they share
// configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Reranker returns the cross-encoder reranking service.
	Reranker() Reranker

	// Synthesizer returns the answer synthesis service.
	Synthesizer() Synthesizer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
