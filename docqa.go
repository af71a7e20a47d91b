// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package docqa answers questions about uploaded documents.
//
// A Service stores each upload, ingests it in the background (extraction,
// chunking, embedding) and answers questions against one document by
// retrieving its most relevant passages and handing them to a language model.
package docqa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/docqa/ai"
	"github.com/poiesic/docqa/ai/openai"
	"github.com/poiesic/docqa/ai/vertex"
	"github.com/poiesic/docqa/blob"
	"github.com/poiesic/docqa/blob/gcs"
	"github.com/poiesic/docqa/config"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/extract"
	"github.com/poiesic/docqa/ingestion"
	"github.com/poiesic/docqa/reembed"
	"github.com/poiesic/docqa/retrieval"
	"github.com/poiesic/docqa/storage"
	"github.com/poiesic/docqa/storage/badger"
)

// Service is the entry point for uploading documents and asking questions.
type Service struct {
	backend   *badger.Backend
	docRepo   storage.DocumentRepository
	chunkRepo storage.ChunkRepository
	blobs     blob.Store
	provider  ai.AIProvider
	pipeline  *ingestion.Pipeline
	retriever *retrieval.Retriever
	strategy  core.Strategy
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	aiConfig         *ai.Config
	provider         ai.AIProvider
	blobs            blob.Store
	inMemory         bool
	strategy         core.Strategy
	ingestionOptions []ingestion.Option
	retrievalOptions []retrieval.Option
	logger           *slog.Logger
}

// WithAIConfig sets the configuration of the default OpenAI-compatible provider.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *serviceOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The service takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithBlobStore stores uploads in store instead of the database.
// A store implementing io.Closer is closed with the service.
func WithBlobStore(store blob.Store) Option {
	return func(o *serviceOptions) {
		o.blobs = store
	}
}

// WithInMemory keeps all data in memory. The file path is ignored.
func WithInMemory() Option {
	return func(o *serviceOptions) {
		o.inMemory = true
	}
}

// WithDefaultStrategy sets the strategy used when Query is given none.
func WithDefaultStrategy(strategy core.Strategy) Option {
	return func(o *serviceOptions) {
		o.strategy = strategy
	}
}

// WithIngestionOptions passes options to the ingestion pipeline.
func WithIngestionOptions(opts ...ingestion.Option) Option {
	return func(o *serviceOptions) {
		o.ingestionOptions = append(o.ingestionOptions, opts...)
	}
}

// WithRetrievalOptions passes options to the retrievers.
func WithRetrievalOptions(opts ...retrieval.Option) Option {
	return func(o *serviceOptions) {
		o.retrievalOptions = append(o.retrievalOptions, opts...)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService opens the database at filePath and wires every component.
func NewService(filePath string, opts ...Option) (*Service, error) {
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(),
		strategy: core.StrategySimilarity,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger.With("component", "docqa")

	// Injected collaborators belong to the service from here on, even on failure.
	s := &Service{
		blobs:    options.blobs,
		provider: options.provider,
		strategy: options.strategy,
		logger:   logger,
	}
	ok := false
	defer func() {
		if !ok {
			s.Close()
		}
	}()

	var err error
	if s.backend, err = badger.OpenBackend(filePath, options.inMemory); err != nil {
		return nil, err
	}
	if s.docRepo, s.chunkRepo, err = badger.NewRepositories(s.backend); err != nil {
		return nil, err
	}

	if s.blobs == nil {
		s.blobs = blob.NewBadgerStore(s.backend)
	}
	if s.provider == nil {
		if s.provider, err = openai.NewProvider(options.aiConfig); err != nil {
			return nil, err
		}
	}

	ingestionOpts := append([]ingestion.Option{ingestion.WithLogger(options.logger)}, options.ingestionOptions...)
	s.pipeline, err = ingestion.NewPipeline(s.docRepo, s.chunkRepo,
		extract.New(extract.WithLogger(options.logger)), s.provider.Embedder(), ingestionOpts...)
	if err != nil {
		return nil, err
	}

	retrievalOpts := append([]retrieval.Option{retrieval.WithLogger(options.logger)}, options.retrievalOptions...)
	if s.retriever, err = retrieval.NewRetriever(s.chunkRepo, s.provider, retrievalOpts...); err != nil {
		return nil, err
	}

	ok = true
	return s, nil
}

// NewServiceFromConfig builds a service from file configuration: the database
// path, the blob store, the AI services and the ingestion and retrieval tuning.
// Options are applied after the ones derived from cfg.
func NewServiceFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	aiConfig := cfg.AIConfig()
	strategy, err := core.ParseStrategy(cfg.Retrieval.Strategy)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithAIConfig(aiConfig),
		WithDefaultStrategy(strategy),
		WithIngestionOptions(
			ingestion.WithChunkSize(cfg.Ingestion.ChunkSize),
			ingestion.WithOverlap(cfg.Ingestion.Overlap),
		),
		WithRetrievalOptions(retrieval.WithTopK(cfg.Retrieval.TopK)),
	}
	if cfg.Ingestion.PoolSize > 0 {
		base = append(base, WithIngestionOptions(ingestion.WithPoolSize(cfg.Ingestion.PoolSize)))
	}

	var closers []io.Closer
	cleanup := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	if cfg.Storage.Blob.Type == config.BlobStoreGCS {
		store, err := gcs.NewStore(ctx, cfg.Storage.Blob.Bucket)
		if err != nil {
			return nil, err
		}
		closers = append(closers, store)
		base = append(base, WithBlobStore(store))
	}

	if aiConfig.Synthesizer == ai.SynthesizerVertex {
		synthesizer, err := vertex.NewSynthesizer(ctx, aiConfig)
		if err != nil {
			cleanup()
			return nil, err
		}
		provider, err := openai.NewProvider(aiConfig, openai.WithSynthesizer(synthesizer))
		if err != nil {
			synthesizer.Close()
			cleanup()
			return nil, err
		}
		base = append(base, WithProvider(provider))
	}

	return NewService(cfg.Storage.Path, append(base, opts...)...)
}

// UploadResult describes an accepted upload.
type UploadResult struct {
	Document *core.Document
	Status   core.ProcessingStatus
	// Task completes when ingestion reaches a terminal status.
	Task     *ingestion.Task
}

// Upload stores data, registers the document as Pending and starts its
// ingestion in the background. The filename extension selects the extractor.
//
// When the pipeline is saturated the document is kept but marked Failed, and
// the result is returned together with ingestion.ErrPipelineBusy.
func (s *Service) Upload(ctx context.Context, data []byte, filename string) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: upload is empty", core.ErrValidation)
	}
	contentType, err := extract.ContentTypeFor(filename)
	if err != nil {
		return nil, err
	}

	checksum := core.IDFromContent(data)
	url, err := s.blobs.Put(ctx, blob.Key(checksum, filename), data)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	var title string
	if contentType == extract.ContentTypeMarkdown {
		title = extract.Title(string(data), filename)
	} else {
		title = extract.Title("", filename)
	}

	doc, task, err := s.pipeline.Ingest(ctx, &core.Document{
		SourceURL:   url,
		Title:       title,
		Filename:    filename,
		ContentType: contentType,
		Checksum:    checksum,
	}, data)
	if errors.Is(err, ingestion.ErrPipelineBusy) {
		return &UploadResult{Document: doc, Status: core.StatusFailed, Task: task}, err
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("upload accepted", "document", doc.Id, "filename", filename, "bytes", len(data))
	return &UploadResult{Document: doc, Status: core.StatusPending, Task: task}, nil
}

// StatusReport is the processing state of a document and the chunks stored so far.
type StatusReport struct {
	Document *core.Document
	Status   core.ProcessingStatus
	Error    string
	Chunks   []*core.Chunk
}

// Status reports the processing state of a document together with the
// chunks currently visible. Unknown ids give core.ErrNotFound.
func (s *Service) Status(ctx context.Context, id core.ID) (*StatusReport, error) {
	doc, err := s.document(ctx, id)
	if err != nil {
		return nil, err
	}
	status, errMsg, err := s.status(ctx, id)
	if err != nil {
		return nil, err
	}
	chunks, err := s.chunkRepo.GetChunksByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StatusReport{Document: doc, Status: status, Error: errMsg, Chunks: chunks}, nil
}

// QueryResult is an answer and the passages it was written from.
type QueryResult struct {
	Answer   string
	Passages []core.RetrievedPassage
	Strategy core.Strategy
	// Status is the document's processing state when the query ran. Queries
	// against unfinished documents only see the chunks stored so far.
	Status core.ProcessingStatus
}

// Query answers question from the passages of one document. An empty
// strategy selects the service default. A document without visible chunks
// yields no passages and an empty answer.
func (s *Service) Query(ctx context.Context, id core.ID, question string, strategy core.Strategy) (*QueryResult, error) {
	return s.QueryWithMonitor(ctx, id, question, strategy, nil)
}

// QueryWithMonitor is Query with retrieval callbacks.
func (s *Service) QueryWithMonitor(ctx context.Context, id core.ID, question string,
	strategy core.Strategy, monitor retrieval.Monitor) (*QueryResult, error) {
	if err := core.ValidateQuery(id, question); err != nil {
		return nil, err
	}
	if strategy == "" {
		strategy = s.strategy
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: unknown retrieval strategy %q", core.ErrValidation, strategy)
	}
	if _, err := s.document(ctx, id); err != nil {
		return nil, err
	}
	status, _, err := s.status(ctx, id)
	if err != nil {
		return nil, err
	}

	passages, err := s.retriever.RetrieveWithMonitor(ctx, id, question, strategy, monitor)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{Passages: passages, Strategy: strategy, Status: status}
	if len(passages) == 0 {
		return result, nil
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	answer, err := s.provider.Synthesizer().Synthesize(ctx, question, texts)
	if err != nil {
		s.logger.Error("error synthesizing answer", "document", id, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrSynthesis, err)
	}
	result.Answer = answer
	return result, nil
}

// DocumentSummary is a stored document and its processing state.
type DocumentSummary struct {
	Document *core.Document
	Status   core.ProcessingStatus
	Error    string
}

// Documents lists every stored document ordered by id.
func (s *Service) Documents(ctx context.Context) ([]DocumentSummary, error) {
	docs, err := s.docRepo.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]DocumentSummary, len(docs))
	for i, doc := range docs {
		status, errMsg, err := s.status(ctx, doc.Id)
		if err != nil {
			return nil, err
		}
		summaries[i] = DocumentSummary{Document: doc, Status: status, Error: errMsg}
	}
	return summaries, nil
}

// NewReembedder creates a reembedder over every stored chunk using the
// service's embedder.
func (s *Service) NewReembedder(cfg *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(s.chunkRepo, s.provider.Embedder(), cfg, progress)
}

// Close waits for running ingestions and releases every resource.
func (s *Service) Close() error {
	if s.pipeline != nil {
		s.pipeline.Close()
	}

	// Close AI provider first
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
		}
	}
	if c, ok := s.blobs.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.logger.Error("error closing blob store", "err", err)
		}
	}

	// Close repositories
	if s.chunkRepo != nil {
		if err := s.chunkRepo.Close(); err != nil {
			s.logger.Error("error closing chunk repository", "err", err)
			return err
		}
	}
	if s.docRepo != nil {
		if err := s.docRepo.Close(); err != nil {
			s.logger.Error("error closing document repository", "err", err)
			return err
		}
	}

	// Close backend
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (s *Service) document(ctx context.Context, id core.ID) (*core.Document, error) {
	doc, err := s.docRepo.GetDocument(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: document %d", core.ErrNotFound, id)
	}
	return doc, err
}

// status resolves a document's processing state from the pipeline, which
// covers live entries and stored records. A document with neither was
// interrupted before finishing.
func (s *Service) status(ctx context.Context, id core.ID) (core.ProcessingStatus, string, error) {
	entry, ok, err := s.pipeline.Status(ctx, id)
	if err != nil {
		return 0, "", err
	}
	if !ok {
		return core.StatusFailed, "ingestion interrupted", nil
	}
	return entry.Status, entry.Error, nil
}
