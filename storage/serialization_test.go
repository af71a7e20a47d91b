package storage

import (
	"testing"
	"time"

	"github.com/poiesic/docqa/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent([]byte("test content"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalDocument(t *testing.T) {
	now := time.Now().Truncate(time.Microsecond)
	doc := &core.Document{
		Id:          9,
		SourceURL:   "gs://docs/9-report.pdf",
		Title:       "Quarterly report",
		Filename:    "report.pdf",
		ContentType: "application/pdf",
		Checksum:    core.IDFromContent([]byte("%PDF-1.7")),
		CreatedAt:   now,
	}

	decoded, err := UnmarshalDocument(MarshalDocument(doc))
	require.NoError(t, err)
	assert.Equal(t, doc.Id, decoded.Id)
	assert.Equal(t, doc.SourceURL, decoded.SourceURL)
	assert.Equal(t, doc.Title, decoded.Title)
	assert.Equal(t, doc.Filename, decoded.Filename)
	assert.Equal(t, doc.ContentType, decoded.ContentType)
	assert.Equal(t, doc.Checksum, decoded.Checksum)
	assert.True(t, doc.CreatedAt.Equal(decoded.CreatedAt))
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	tests := []struct {
		name  string
		chunk *core.Chunk
	}{
		{
			name: "with embedding",
			chunk: &core.Chunk{
				Id: 1, DocumentId: 2, Text: "The cat sat.", Index: 0,
				Embedding: core.Embedding{0.1, 0.2, 0.3},
				CreatedAt: time.Now().Truncate(time.Microsecond),
			},
		},
		{
			name: "without embedding",
			chunk: &core.Chunk{
				Id: 5, DocumentId: 2, Text: "Dogs bark loudly.", Index: 7,
				CreatedAt: time.Now().Truncate(time.Microsecond),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := UnmarshalChunk(MarshalChunk(tt.chunk))
			require.NoError(t, err)
			assert.Equal(t, tt.chunk.Id, decoded.Id)
			assert.Equal(t, tt.chunk.DocumentId, decoded.DocumentId)
			assert.Equal(t, tt.chunk.Text, decoded.Text)
			assert.Equal(t, tt.chunk.Index, decoded.Index)
			assert.Equal(t, len(tt.chunk.Embedding), len(decoded.Embedding))
			for i := range tt.chunk.Embedding {
				assert.InDelta(t, tt.chunk.Embedding[i], decoded.Embedding[i], 1e-6)
			}
		})
	}
}

func TestUnmarshalChunk_Truncated(t *testing.T) {
	data := MarshalChunk(&core.Chunk{Id: 1, DocumentId: 2, Text: "hello world", Embedding: core.Embedding{1, 2}})
	_, err := UnmarshalChunk(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestUnmarshal_TrailingBytes(t *testing.T) {
	doc := MarshalDocument(&core.Document{Id: 4, SourceURL: "badger:blob/x/a.txt"})
	_, err := UnmarshalDocument(append(doc, 0x01, 0x02))
	assert.ErrorIs(t, err, ErrSerializationFailed)
	assert.Contains(t, err.Error(), "2 trailing bytes")

	_, err = UnmarshalID(append(MarshalID(7), 0x00))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalIngestionRecord(t *testing.T) {
	record := &core.IngestionRecord{
		DocumentId: 3,
		Status:     core.StatusFailed,
		ChunkCount: 1,
		Error:      "embedding failed: timeout",
		FinishedAt: time.Now().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalIngestionRecord(MarshalIngestionRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record.DocumentId, decoded.DocumentId)
	assert.Equal(t, record.Status, decoded.Status)
	assert.Equal(t, record.ChunkCount, decoded.ChunkCount)
	assert.Equal(t, record.Error, decoded.Error)
	assert.True(t, record.FinishedAt.Equal(decoded.FinishedAt))
}
