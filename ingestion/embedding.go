package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docqa/ai"
	"github.com/poiesic/docqa/chunking"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/extract"
	"github.com/poiesic/docqa/segment"
	"github.com/poiesic/docqa/storage"
)

// embeddingProcessor extracts, chunks and embeds a document, persisting
// every chunk in its own transaction as soon as it has a vector.
type embeddingProcessor struct {
	chunkRepository storage.ChunkRepository
	extractor       extract.Extractor
	embedder        ai.Embedder
	chunkSize       int
	overlap         int
	logger          *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(chunkRepository storage.ChunkRepository, extractor extract.Extractor,
	embedder ai.Embedder, chunkSize, overlap int, logger *slog.Logger) (processor, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if err := chunking.Validate(chunkSize, overlap); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		chunkRepository: chunkRepository,
		extractor:       extractor,
		embedder:        embedder,
		chunkSize:       chunkSize,
		overlap:         overlap,
		logger:          logger.With("processor", "embeddings"),
	}, nil
}

// process runs extraction, segmentation and chunking, then embeds and stores
// chunks in order. The first failure stops processing; chunks stored before
// it stay in place.
func (ep *embeddingProcessor) process(ctx context.Context, doc *core.Document, data []byte) (int, error) {
	logger := ep.logger.With("document", doc.Id)

	text, err := ep.extractor.Extract(ctx, data, doc.ContentType)
	if err != nil {
		return 0, err
	}

	sentences := segment.Sentences(text)
	texts, err := chunking.Chunk(sentences, ep.chunkSize, ep.overlap)
	if err != nil {
		return 0, fmt.Errorf("chunking failed: %w", err)
	}
	logger.Info("chunked document", "sentences", len(sentences), "chunks", len(texts))

	dim := 0
	for i, text := range texts {
		vector, err := ep.embedder.EmbedText(ctx, text)
		if err != nil {
			return i, fmt.Errorf("%w: chunk %d: %w", core.ErrEmbedding, i, err)
		}
		if len(vector) == 0 {
			return i, fmt.Errorf("%w: chunk %d: empty vector", core.ErrEmbedding, i)
		}
		if dim == 0 {
			dim = len(vector)
		} else if len(vector) != dim {
			return i, fmt.Errorf("%w: %w: chunk %d has %d dimensions, expected %d",
				core.ErrEmbedding, ErrDimensionChanged, i, len(vector), dim)
		}

		chunk := &core.Chunk{
			DocumentId: doc.Id,
			Text:       text,
			Embedding:  vector,
			Index:      i,
		}
		if _, err := ep.chunkRepository.AddChunk(ctx, chunk); err != nil {
			return i, fmt.Errorf("failed to store chunk %d: %w", i, err)
		}
		logger.Debug("stored chunk", "index", i, "runes", len([]rune(text)))
	}

	return len(texts), nil
}
