package reembed

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/poiesic/docqa/ai"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
)

// BatchProcessor handles embedding generation for batches of chunks.
// It is safe for concurrent use; every batch it processes must produce
// vectors of the same dimension.
type BatchProcessor struct {
	repo           storage.ChunkRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
	dimension      atomic.Int64
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.ChunkRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of chunks and updates them in the
// database. Vectors are stored as the model returns them, like at ingestion.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrEmbedding, err)
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	for i, vector := range embeddings {
		if err := bp.checkDimension(len(vector)); err != nil {
			return fmt.Errorf("chunk %d of document %d: %w", chunks[i].Index, chunks[i].DocumentId, err)
		}
	}

	updated := make([]*core.Chunk, len(chunks))
	for i, chunk := range chunks {
		c := *chunk
		c.Embedding = core.Embedding(embeddings[i])
		updated[i] = &c
	}

	if _, err := bp.repo.UpdateChunks(ctx, updated...); err != nil {
		return fmt.Errorf("failed to update chunks: %w", err)
	}
	return nil
}

// checkDimension records the first dimension seen and rejects any other.
func (bp *BatchProcessor) checkDimension(dim int) error {
	if dim == 0 {
		return fmt.Errorf("%w: empty vector", ErrDimensionChanged)
	}
	if bp.dimension.CompareAndSwap(0, int64(dim)) {
		return nil
	}
	if expected := bp.dimension.Load(); expected != int64(dim) {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionChanged, dim, expected)
	}
	return nil
}
