package badger

import (
	"testing"

	"github.com/poiesic/docqa/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir() + "/db"
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	_, err = backend.GetBlob("anything")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestBackendBlobs(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.PutBlob("k", []byte("value")))
	// Existing blobs are never overwritten
	require.NoError(t, backend.PutBlob("k", []byte("other")))

	got, err := backend.GetBlob("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	_, err = backend.GetBlob("missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestChunkKeysOrderByIndex(t *testing.T) {
	a := makeChunkKey(1, 2)
	b := makeChunkKey(1, 10)
	c := makeChunkKey(2, 0)

	assert.Less(t, string(a), string(b))
	assert.Less(t, string(b), string(c))
	assert.Equal(t, makePartialChunkKey(1), a[:len(makePartialChunkKey(1))])
}
