package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// AddDocument stores a new document.
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if doc.Id == 0 {
			id, err := nextID(r.idSeq)
			if err != nil {
				return err
			}
			doc.Id = id
		}
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now().UTC()
		}

		if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalDocument(val)
			return err
		})
	}, false)
	return result, err
}

// ListDocuments returns every stored document ordered by ID.
func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				doc, err := storage.UnmarshalDocument(val)
				if err != nil {
					return err
				}
				results = append(results, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return results, err
}

// SaveIngestionRecord stores the terminal ingestion outcome of a document.
func (r *DocumentRepository) SaveIngestionRecord(ctx context.Context, record *core.IngestionRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if record.FinishedAt.IsZero() {
			record.FinishedAt = time.Now().UTC()
		}
		if err := tx.Set(makeIngestionKey(record.DocumentId), storage.MarshalIngestionRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetIngestionRecord retrieves the ingestion outcome of a document.
func (r *DocumentRepository) GetIngestionRecord(ctx context.Context, documentID core.ID) (*core.IngestionRecord, error) {
	var record *core.IngestionRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIngestionKey(documentID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = storage.UnmarshalIngestionRecord(val)
			return err
		})
	}, false)
	return record, err
}

// nextID draws the next ID from seq.
// BadgerDB sequences can return 0 on first call, so we skip it.
func nextID(seq *badger.Sequence) (core.ID, error) {
	id, err := seq.Next()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		id, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(id), nil
}
