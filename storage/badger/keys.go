package badger

import (
	"encoding/binary"

	"github.com/poiesic/docqa/core"
)

// Key prefixes for different data types
const (
	documentPrefix  = "doc:"
	documentIDSeq   = "docseq"
	chunkPrefix     = "chk:"
	chunkIDSeq      = "chkseq"
	ingestionPrefix = "ing:"
	blobPrefix      = "blob:"
)

// makeDocumentKey generates a key for a document by ID.
// Format: prefix:id
func makeDocumentKey(id core.ID) []byte {
	buf := make([]byte, len(documentPrefix)+8)
	offset := copy(buf, documentPrefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkKey generates a composite key for a chunk.
// Format: prefix:documentID:index
func makeChunkKey(documentID core.ID, index int) []byte {
	buf := make([]byte, len(chunkPrefix)+12)
	offset := copy(buf, chunkPrefix)
	// BigEndian keeps a document's chunks contiguous and in index order
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint32(buf[offset:], uint32(index))
	return buf
}

// makePartialChunkKey generates the key prefix shared by all chunks of a document.
// Format: prefix:documentID
func makePartialChunkKey(documentID core.ID) []byte {
	buf := make([]byte, len(chunkPrefix)+8)
	offset := copy(buf, chunkPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeIngestionKey generates a key for a document's ingestion record.
func makeIngestionKey(documentID core.ID) []byte {
	buf := make([]byte, len(ingestionPrefix)+8)
	offset := copy(buf, ingestionPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeBlobKey generates a key for raw upload bytes.
func makeBlobKey(name string) []byte {
	return []byte(blobPrefix + name)
}
