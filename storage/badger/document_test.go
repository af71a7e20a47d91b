package badger

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepositories(t *testing.T) (storage.DocumentRepository, storage.ChunkRepository) {
	t.Helper()
	docRepo, chunkRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		docRepo.Close()
		chunkRepo.Close()
		backend.Close()
	})
	return docRepo, chunkRepo
}

func TestAddDocument(t *testing.T) {
	docRepo, _ := setupRepositories(t)
	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, &core.Document{
		SourceURL: "badger:blob/abc/notes.txt",
		Filename:  "notes.txt",
		Title:     "notes",
	})
	require.NoError(t, err)
	assert.NotZero(t, doc.Id)
	assert.False(t, doc.CreatedAt.IsZero())

	second, err := docRepo.AddDocument(ctx, &core.Document{SourceURL: "badger:blob/def/b.txt"})
	require.NoError(t, err)
	assert.Greater(t, second.Id, doc.Id)

	got, err := docRepo.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", got.Filename)
	assert.Equal(t, doc.SourceURL, got.SourceURL)
}

func TestAddDocument_Invalid(t *testing.T) {
	docRepo, _ := setupRepositories(t)

	_, err := docRepo.AddDocument(context.Background(), &core.Document{Filename: "a.txt"})
	assert.ErrorIs(t, err, core.ErrInvalidDocument)
}

func TestGetDocument_NotFound(t *testing.T) {
	docRepo, _ := setupRepositories(t)

	_, err := docRepo.GetDocument(context.Background(), 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListDocuments(t *testing.T) {
	docRepo, _ := setupRepositories(t)
	ctx := context.Background()

	docs, err := docRepo.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	for _, name := range []string{"a.txt", "b.md", "c.pdf"} {
		_, err := docRepo.AddDocument(ctx, &core.Document{SourceURL: "badger:blob/" + name, Filename: name})
		require.NoError(t, err)
	}

	docs, err = docRepo.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a.txt", docs[0].Filename)
	assert.Equal(t, "c.pdf", docs[2].Filename)
}

func TestIngestionRecord(t *testing.T) {
	docRepo, _ := setupRepositories(t)
	ctx := context.Background()

	_, err := docRepo.GetIngestionRecord(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = docRepo.SaveIngestionRecord(ctx, &core.IngestionRecord{
		DocumentId: 1,
		Status:     core.StatusFailed,
		ChunkCount: 1,
		Error:      "embedding failed",
	})
	require.NoError(t, err)

	record, err := docRepo.GetIngestionRecord(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, record.Status)
	assert.Equal(t, 1, record.ChunkCount)
	assert.Equal(t, "embedding failed", record.Error)
	assert.False(t, record.FinishedAt.IsZero())
}

func TestGetDocument_Corrupt(t *testing.T) {
	docRepo, chunkRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		docRepo.Close()
		chunkRepo.Close()
		backend.Close()
	})

	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		return tx.Set(makeDocumentKey(5), []byte{0xff, 0xff, 0xff})
	}, true))

	_, err = docRepo.GetDocument(context.Background(), 5)
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)
	assert.Contains(t, err.Error(), "document")
}
