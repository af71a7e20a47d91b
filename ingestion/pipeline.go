package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docqa/ai"
	"github.com/poiesic/docqa/chunking"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/extract"
	"github.com/poiesic/docqa/storage"
)

// Pipeline orchestrates the ingestion of uploaded documents.
// It owns the worker pool and the status registry of every document it accepts.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	pool               *ants.Pool
	poolSize           int
	proc               processor
	registry           *statusRegistry
	listener           StatusListener
	chunkSize          int
	overlap            int
	logger             *slog.Logger

	mu     sync.Mutex // guards closed and tasks.Add
	closed bool
	tasks  sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the number of documents processed concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.poolSize = size
		return nil
	}
}

// WithChunkSize sets the target chunk length in characters.
// Default is chunking.DefaultTargetSize.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		p.chunkSize = size
		return nil
	}
}

// WithOverlap sets the maximum length of a sentence carried into the next
// chunk. Default is chunking.DefaultOverlap.
func WithOverlap(overlap int) Option {
	return func(p *Pipeline) error {
		p.overlap = overlap
		return nil
	}
}

// WithStatusListener registers a function called after every status change.
func WithStatusListener(listener StatusListener) Option {
	return func(p *Pipeline) error {
		p.listener = listener
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	extractor extract.Extractor,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	// Create pipeline with defaults
	p := &Pipeline{
		documentRepository: documentRepository,
		poolSize:           poolSize,
		registry:           newStatusRegistry(),
		chunkSize:          chunking.DefaultTargetSize,
		overlap:            chunking.DefaultOverlap,
		logger:             slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	// Create the processor after options are applied (so it gets final config)
	proc, err := newEmbeddingProcessor(chunkRepository, extractor, embedder, p.chunkSize, p.overlap, p.logger)
	if err != nil {
		return nil, err
	}
	p.proc = proc

	pool, err := ants.NewPool(p.poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	p.pool = pool

	return p, nil
}

// Ingest stores doc, marks it Pending and schedules its processing. The
// returned Task completes when the document reaches Completed or Failed.
//
// When every worker is busy the document is stored, marked Failed and
// ErrPipelineBusy is returned together with the stored document.
func (p *Pipeline) Ingest(ctx context.Context, doc *core.Document, data []byte) (*core.Document, *Task, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", core.ErrValidation, err)
	}

	// Counting the task before unlocking keeps Close from releasing the pool
	// while this call is still storing the document.
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, nil, ErrPipelineClosed
	}
	p.tasks.Add(1)
	p.mu.Unlock()

	stored, err := p.documentRepository.AddDocument(ctx, doc)
	if err != nil {
		p.tasks.Done()
		return nil, nil, err
	}
	p.transition(stored.Id, core.StatusPending, "")

	task := newTask(stored.Id)
	err = p.pool.Submit(func() {
		defer p.tasks.Done()
		p.run(task, stored, data)
	})
	if err != nil {
		p.tasks.Done()
		if errors.Is(err, ants.ErrPoolOverload) {
			err = ErrPipelineBusy
		}
		p.fail(stored.Id, 0, err)
		task.finish(err)
		return stored, task, err
	}

	p.logger.Info("document accepted", "document", stored.Id, "filename", stored.Filename)
	return stored, task, nil
}

// run processes one document. It never returns an error: every outcome is
// recorded as a terminal status.
func (p *Pipeline) run(task *Task, doc *core.Document, data []byte) {
	var (
		stored int
		err    error
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ingestion panicked: %v", r)
		}
		if err != nil {
			p.fail(doc.Id, stored, err)
		} else {
			p.complete(doc.Id, stored)
		}
		task.finish(err)
	}()

	p.transition(doc.Id, core.StatusProcessing, "")
	start := time.Now()

	// Processing is detached from the request that triggered it.
	stored, err = p.proc.process(context.Background(), doc, data)
	p.logger.Info("document processed", "document", doc.Id, "chunks", stored,
		"elapsed", time.Since(start), "err", err)
}

func (p *Pipeline) complete(documentID core.ID, chunks int) {
	p.transition(documentID, core.StatusCompleted, "")
	p.finalize(documentID, core.StatusCompleted, chunks, "")
}

func (p *Pipeline) fail(documentID core.ID, chunks int, cause error) {
	p.logger.Error("document ingestion failed", "document", documentID, "err", cause)
	p.transition(documentID, core.StatusFailed, cause.Error())
	p.finalize(documentID, core.StatusFailed, chunks, cause.Error())
}

// finalize persists the terminal status and drops the live entry once the
// record can answer for it. An entry whose record failed to save is kept.
func (p *Pipeline) finalize(documentID core.ID, status core.ProcessingStatus, chunks int, errMsg string) {
	if p.saveRecord(documentID, status, chunks, errMsg) {
		p.registry.evict(documentID)
	}
}

func (p *Pipeline) transition(documentID core.ID, status core.ProcessingStatus, errMsg string) {
	entry, err := p.registry.set(documentID, status, errMsg)
	if err != nil {
		p.logger.Warn("ignoring status change", "document", documentID, "err", err)
		return
	}
	if p.listener != nil {
		p.listener(documentID, entry)
	}
}

func (p *Pipeline) saveRecord(documentID core.ID, status core.ProcessingStatus, chunks int, errMsg string) bool {
	record := &core.IngestionRecord{
		DocumentId: documentID,
		Status:     status,
		ChunkCount: chunks,
		Error:      errMsg,
		FinishedAt: time.Now().UTC(),
	}
	if err := p.documentRepository.SaveIngestionRecord(context.Background(), record); err != nil {
		p.logger.Error("error saving ingestion record", "document", documentID, "err", err)
		return false
	}
	return true
}

// Status returns the status of a document accepted by this pipeline. Live
// entries come from memory; finished documents are read from their
// ingestion record. It reports false when neither exists.
func (p *Pipeline) Status(ctx context.Context, documentID core.ID) (StatusEntry, bool, error) {
	if entry, ok := p.registry.get(documentID); ok {
		return entry, true, nil
	}
	record, err := p.documentRepository.GetIngestionRecord(ctx, documentID)
	if errors.Is(err, storage.ErrNotFound) {
		return StatusEntry{}, false, nil
	}
	if err != nil {
		return StatusEntry{}, false, err
	}
	return StatusEntry{Status: record.Status, Error: record.Error, UpdatedAt: record.FinishedAt}, true, nil
}

// Close waits for in-flight documents to finish and releases the worker pool.
// The pipeline should not be used after calling Close.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.tasks.Wait()
	p.pool.Release()
}
