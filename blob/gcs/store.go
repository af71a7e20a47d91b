// Package gcs stores raw uploads in a Google Cloud Storage bucket.
package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/poiesic/docqa/blob"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Store writes uploads to a bucket with create-only semantics.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	logger *slog.Logger
}

var _ blob.Store = (*Store)(nil)

// NewStore opens a client for bucket. Credentials come from the environment
// unless client options say otherwise.
func NewStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("gcs: bucket name cannot be empty")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &Store{
		client: client,
		bucket: client.Bucket(bucket),
		name:   bucket,
		logger: slog.Default().With("component", "gcs"),
	}, nil
}

// Put writes data to the object named key. An existing object is left alone.
func (s *Store) Put(ctx context.Context, key string, data []byte) (string, error) {
	url := fmt.Sprintf("gs://%s/%s", s.name, key)
	writer := s.bucket.Object(key).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			s.logger.Debug("object already exists", "object", key)
			return url, nil
		}
		return "", fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			s.logger.Debug("object already exists", "object", key)
			return url, nil
		}
		return "", fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return url, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
