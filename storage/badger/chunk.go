package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	idSeq, err := backend.GetSequence(chunkIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChunkRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ChunkRepository) Close() error {
	return r.idSeq.Release()
}

// AddChunk stores a single chunk and commits immediately.
func (r *ChunkRepository) AddChunk(ctx context.Context, chunk *core.Chunk) (*core.Chunk, error) {
	if err := core.ValidateChunk(chunk); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if chunk.Id == 0 {
			id, err := nextID(r.idSeq)
			if err != nil {
				return err
			}
			chunk.Id = id
		}
		if chunk.CreatedAt.IsZero() {
			chunk.CreatedAt = time.Now().UTC()
		}

		key := makeChunkKey(chunk.DocumentId, chunk.Index)
		if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// UpdateChunks replaces the stored form of existing chunks.
func (r *ChunkRepository) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.DocumentId, chunk.Index)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return storage.ErrNotFound
				}
				return err
			}
			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	return chunks, err
}

// GetChunksByDocument returns the chunks of a document ordered by Index.
func (r *ChunkRepository) GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error) {
	results := []*core.Chunk{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkKey(documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			chunk, err := readChunk(iter.Item())
			if err != nil {
				return err
			}
			results = append(results, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CountChunks returns the number of chunks stored across all documents.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// ForEachChunk visits every stored chunk in key order.
func (r *ChunkRepository) ForEachChunk(ctx context.Context, fn func(*core.Chunk) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			chunk, err := readChunk(iter.Item())
			if err != nil {
				return err
			}
			if err := fn(chunk); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

func readChunk(item *badger.Item) (*core.Chunk, error) {
	var chunk *core.Chunk
	err := item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}
