package storage

import (
	"context"

	"github.com/poiesic/docqa/core"
)

// Repository is the lifecycle shared by all repositories. Every write is its
// own committed transaction. Implementations must be safe for concurrent use.
type Repository interface {
	// Close releases the repository's resources. The backend stays open.
	Close() error
}

// DocumentRepository provides operations for managing documents and their
// terminal ingestion outcomes.
type DocumentRepository interface {
	Repository
	// AddDocument stores a new document.
	// For a document with ID=0, generates a new ID from sequence.
	// Sets CreatedAt if not already set.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// ListDocuments returns every stored document ordered by ID.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// SaveIngestionRecord stores the terminal ingestion outcome of a document,
	// replacing any earlier record.
	SaveIngestionRecord(ctx context.Context, record *core.IngestionRecord) error

	// GetIngestionRecord retrieves the ingestion outcome of a document.
	// Returns ErrNotFound if ingestion never reached a terminal state.
	GetIngestionRecord(ctx context.Context, documentID core.ID) (*core.IngestionRecord, error)
}

// ChunkRepository provides operations for managing document chunks.
type ChunkRepository interface {
	Repository
	// AddChunk stores a single chunk in its own committed transaction, so it
	// is visible to readers as soon as AddChunk returns.
	// For a chunk with ID=0, generates a new ID from sequence.
	AddChunk(ctx context.Context, chunk *core.Chunk) (*core.Chunk, error)

	// UpdateChunks replaces the stored form of existing chunks.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunksByDocument returns the chunks of a document ordered by Index.
	// Returns an empty slice when the document has no chunks.
	GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error)

	// CountChunks returns the number of chunks stored across all documents.
	CountChunks(ctx context.Context) (int, error)

	// ForEachChunk visits every stored chunk in key order.
	// Iteration stops at the first error returned by fn.
	ForEachChunk(ctx context.Context, fn func(*core.Chunk) error) error
}
