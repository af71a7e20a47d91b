// Package blob stores raw upload bytes and returns the URL they can be found at.
package blob

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage/badger"
)

// Store persists raw uploads. Put is create-only: writing a key that already
// exists leaves the stored bytes untouched and still returns its URL.
type Store interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// Key builds the content-addressed object name of an upload.
func Key(checksum core.ID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return fmt.Sprintf("%016x/%s", uint64(checksum), name)
}

// BadgerStore keeps uploads in the same BadgerDB as the documents.
type BadgerStore struct {
	backend *badger.Backend
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore creates a store on an open backend.
func NewBadgerStore(backend *badger.Backend) *BadgerStore {
	return &BadgerStore{backend: backend}
}

// Put stores data under key unless the key is already present.
func (s *BadgerStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.backend.PutBlob(key, data); err != nil {
		return "", fmt.Errorf("failed to store blob %s: %w", key, err)
	}
	return "badger:blob/" + key, nil
}

// Get returns the bytes stored under key.
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.backend.GetBlob(key)
}
