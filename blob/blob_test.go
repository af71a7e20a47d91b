package blob

import (
	"context"
	"testing"

	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	sum := core.ID(0xabc)
	assert.Equal(t, "0000000000000abc/report.pdf", Key(sum, "report.pdf"))
	assert.Equal(t, "0000000000000abc/report.pdf", Key(sum, "../../etc/report.pdf"))
	assert.Equal(t, "0000000000000abc/notes.md", Key(sum, `C:\docs\notes.md`))
	assert.Equal(t, "0000000000000abc/upload", Key(sum, ""))
}

func TestBadgerStore(t *testing.T) {
	backend, err := badger.OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	store := NewBadgerStore(backend)
	ctx := context.Background()

	url, err := store.Put(ctx, "00ff/a.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "badger:blob/00ff/a.txt", url)

	again, err := store.Put(ctx, "00ff/a.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, url, again)

	data, err := store.Get(ctx, "00ff/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}
