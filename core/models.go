package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Documents and chunks get IDs from database sequences; checksums use content hashing.
type ID uint64

// IDFromContent generates a deterministic ID from content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(data []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Embedding is the numeric vector representation of a chunk or a query.
// Records are decoded into this type once at the storage boundary.
type Embedding []float32

// Dim returns the number of dimensions of the embedding.
func (e Embedding) Dim() int {
	return len(e)
}

// Document is an uploaded source file. It is immutable once stored; its
// processing status lives in the ingestion pipeline, not on the row.
type Document struct {
	Id          ID
	SourceURL   string    // Where the raw upload was stored
	Title       string    // Display title
	Filename    string    // Original upload filename
	ContentType string    // Content type used for extraction
	Checksum    ID        // BLAKE2b hash of the raw upload
	CreatedAt   time.Time // When the document was accepted
}

// Chunk is a bounded passage of a document's text, the unit of embedding and retrieval.
type Chunk struct {
	Id         ID
	DocumentId ID
	Text       string
	Embedding  Embedding // Empty until the chunk has been embedded
	Index      int       // Zero-based position within the document
	CreatedAt  time.Time
}

// IngestionRecord is the terminal outcome of a document's ingestion, written
// when the pipeline reaches Completed or Failed.
type IngestionRecord struct {
	DocumentId ID
	Status     ProcessingStatus
	ChunkCount int
	Error      string
	FinishedAt time.Time
}

// RetrievedPassage is a chunk selected for a query together with its relevance score.
// Score semantics depend on the retrieval strategy that produced it.
type RetrievedPassage struct {
	ChunkId ID
	Index   int
	Text    string
	Score   float64
}
