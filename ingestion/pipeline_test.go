package ingestion

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/docqa/ai/mock"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/extract"
	"github.com/poiesic/docqa/storage"
	"github.com/poiesic/docqa/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepositories(t *testing.T) (storage.DocumentRepository, storage.ChunkRepository) {
	docRepo, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	t.Cleanup(func() {
		chunkRepo.Close()
		docRepo.Close()
		backend.Close()
	})
	return docRepo, chunkRepo
}

func setupTestPipeline(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) (*Pipeline, storage.DocumentRepository, storage.ChunkRepository) {
	docRepo, chunkRepo := setupTestRepositories(t)

	p, err := NewPipeline(docRepo, chunkRepo, extract.New(), embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Close)

	return p, docRepo, chunkRepo
}

func textDocument(name string) *core.Document {
	return &core.Document{
		SourceURL:   "badger:blob/" + name,
		Title:       name,
		Filename:    name,
		ContentType: extract.ContentTypeText,
	}
}

// threeChunkText produces three 30 character sentences, one chunk each at a
// target of 40 with no overlap.
func threeChunkText() string {
	return strings.Join([]string{
		strings.Repeat("a", 29) + ".",
		strings.Repeat("b", 29) + ".",
		strings.Repeat("c", 29) + ".",
	}, " ")
}

func waitTask(t *testing.T, task *Task) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	select {
	case <-task.Done():
	case <-ctx.Done():
		t.Fatal("ingestion did not finish")
	}
	return task.Wait(ctx)
}

type statusRecorder struct {
	mu       sync.Mutex
	statuses map[core.ID][]core.ProcessingStatus
}

func newStatusRecorder() *statusRecorder {
	return &statusRecorder{statuses: make(map[core.ID][]core.ProcessingStatus)}
}

func (r *statusRecorder) listen(id core.ID, entry StatusEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = append(r.statuses[id], entry.Status)
}

func (r *statusRecorder) get(id core.ID) []core.ProcessingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.ProcessingStatus(nil), r.statuses[id]...)
}

func TestNewPipeline_Validation(t *testing.T) {
	docRepo, chunkRepo := setupTestRepositories(t)
	embedder := mock.NewMockEmbedder()
	extractor := extract.New()

	_, err := NewPipeline(nil, chunkRepo, extractor, embedder)
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)

	_, err = NewPipeline(docRepo, nil, extractor, embedder)
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewPipeline(docRepo, chunkRepo, nil, embedder)
	assert.ErrorIs(t, err, ErrExtractorRequired)

	_, err = NewPipeline(docRepo, chunkRepo, extractor, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewPipeline(docRepo, chunkRepo, extractor, embedder, WithChunkSize(100), WithOverlap(100))
	assert.Error(t, err)
}

func TestIngest_Completes(t *testing.T) {
	recorder := newStatusRecorder()
	embedder := mock.NewMockEmbedder()
	p, docRepo, chunkRepo := setupTestPipeline(t, embedder,
		WithChunkSize(40), WithOverlap(0), WithStatusListener(recorder.listen))
	ctx := context.Background()

	doc, task, err := p.Ingest(ctx, textDocument("three.txt"), []byte(threeChunkText()))
	require.NoError(t, err)
	require.NotZero(t, doc.Id)
	assert.Equal(t, doc.Id, task.DocumentID())

	require.NoError(t, waitTask(t, task))
	assert.NoError(t, task.Err())

	_, live := p.registry.get(doc.Id)
	assert.False(t, live, "finished documents leave the registry")
	entry, ok, err := p.Status(ctx, doc.Id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.StatusCompleted, entry.Status)
	assert.Empty(t, entry.Error)
	assert.False(t, entry.UpdatedAt.IsZero())

	assert.Equal(t,
		[]core.ProcessingStatus{core.StatusPending, core.StatusProcessing, core.StatusCompleted},
		recorder.get(doc.Id))

	chunks, err := chunkRepo.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, doc.Id, c.DocumentId)
		assert.Len(t, c.Embedding, mock.DefaultDimension)
	}
	assert.Equal(t, strings.Repeat("b", 29)+".", chunks[1].Text)
	assert.Equal(t, 3, embedder.CallCount())

	record, err := docRepo.GetIngestionRecord(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, record.Status)
	assert.Equal(t, 3, record.ChunkCount)
}

func TestIngest_EmbeddingFailureKeepsEarlierChunks(t *testing.T) {
	boom := errors.New("embedding service down")
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		if strings.HasPrefix(text, "b") {
			return nil, boom
		}
		return []float32{1, 0, 0}, nil
	})
	recorder := newStatusRecorder()
	p, docRepo, chunkRepo := setupTestPipeline(t, embedder,
		WithChunkSize(40), WithOverlap(0), WithStatusListener(recorder.listen))
	ctx := context.Background()

	doc, task, err := p.Ingest(ctx, textDocument("three.txt"), []byte(threeChunkText()))
	require.NoError(t, err)

	taskErr := waitTask(t, task)
	require.Error(t, taskErr)
	assert.ErrorIs(t, taskErr, core.ErrEmbedding)
	assert.ErrorIs(t, taskErr, boom)

	entry, ok, err := p.Status(ctx, doc.Id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.StatusFailed, entry.Status)
	assert.Contains(t, entry.Error, "embedding service down")
	assert.Equal(t,
		[]core.ProcessingStatus{core.StatusPending, core.StatusProcessing, core.StatusFailed},
		recorder.get(doc.Id))

	chunks, err := chunkRepo.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)

	record, err := docRepo.GetIngestionRecord(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, record.Status)
	assert.Equal(t, 1, record.ChunkCount)
	assert.Contains(t, record.Error, "embedding service down")
}

func TestIngest_DimensionChangeFails(t *testing.T) {
	var calls int
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		calls++
		if calls == 1 {
			return []float32{1, 0, 0}, nil
		}
		return []float32{1, 0}, nil
	})
	p, _, chunkRepo := setupTestPipeline(t, embedder, WithChunkSize(40), WithOverlap(0))

	doc, task, err := p.Ingest(context.Background(), textDocument("three.txt"), []byte(threeChunkText()))
	require.NoError(t, err)

	taskErr := waitTask(t, task)
	assert.ErrorIs(t, taskErr, ErrDimensionChanged)
	assert.ErrorIs(t, taskErr, core.ErrEmbedding)

	chunks, err := chunkRepo.GetChunksByDocument(context.Background(), doc.Id)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestIngest_ExtractionFailure(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	p, _, _ := setupTestPipeline(t, embedder)

	doc := textDocument("broken.pdf")
	doc.ContentType = extract.ContentTypePDF

	stored, task, err := p.Ingest(context.Background(), doc, []byte("not really a pdf"))
	require.NoError(t, err)

	taskErr := waitTask(t, task)
	assert.ErrorIs(t, taskErr, core.ErrExtraction)

	entry, ok, err := p.Status(context.Background(), stored.Id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.StatusFailed, entry.Status)
	assert.Equal(t, 0, embedder.CallCount())
}

func TestIngest_InvalidDocument(t *testing.T) {
	p, _, _ := setupTestPipeline(t, mock.NewMockEmbedder())

	_, _, err := p.Ingest(context.Background(), &core.Document{Filename: "x.txt"}, []byte("text"))
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.ErrorIs(t, err, core.ErrInvalidDocument)
}

func TestIngest_BusyPoolRejects(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return []float32{1, 0}, nil
	})
	p, docRepo, _ := setupTestPipeline(t, embedder, WithPoolSize(1))
	ctx := context.Background()

	_, first, err := p.Ingest(ctx, textDocument("first.txt"), []byte("The first document."))
	require.NoError(t, err)
	<-started

	second, task, err := p.Ingest(ctx, textDocument("second.txt"), []byte("The second document."))
	require.ErrorIs(t, err, ErrPipelineBusy)
	require.NotNil(t, second)
	assert.ErrorIs(t, task.Err(), ErrPipelineBusy)

	entry, ok, err := p.Status(ctx, second.Id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.StatusFailed, entry.Status)

	record, err := docRepo.GetIngestionRecord(ctx, second.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, record.Status)

	close(release)
	assert.NoError(t, waitTask(t, first))
}

func TestPipeline_CloseWaitsForTasks(t *testing.T) {
	release := make(chan struct{})
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		<-release
		return []float32{1, 0}, nil
	})
	p, _, _ := setupTestPipeline(t, embedder)

	_, task, err := p.Ingest(context.Background(), textDocument("a.txt"), []byte("Some text."))
	require.NoError(t, err)

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a task was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-closed
	assert.NoError(t, task.Err())

	_, _, err = p.Ingest(context.Background(), textDocument("b.txt"), []byte("More text."))
	assert.ErrorIs(t, err, ErrPipelineClosed)
}

func TestTask_WaitHonoursContext(t *testing.T) {
	task := newTask(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, task.Wait(ctx), context.Canceled)
	assert.NoError(t, task.Err())

	task.finish(core.ErrEmbedding)
	assert.ErrorIs(t, task.Wait(context.Background()), core.ErrEmbedding)
}

func TestStatusRegistry_Transitions(t *testing.T) {
	r := newStatusRegistry()

	_, err := r.set(1, core.StatusProcessing, "")
	assert.Error(t, err, "first status must be Pending")

	_, err = r.set(1, core.StatusPending, "")
	require.NoError(t, err)
	_, err = r.set(1, core.StatusProcessing, "")
	require.NoError(t, err)
	_, err = r.set(1, core.StatusCompleted, "")
	require.NoError(t, err)

	_, err = r.set(1, core.StatusFailed, "late failure")
	assert.Error(t, err, "terminal status is final")

	entry, ok := r.get(1)
	require.True(t, ok)
	assert.Equal(t, core.StatusCompleted, entry.Status)

	_, ok = r.get(2)
	assert.False(t, ok)

	r.evict(1)
	_, ok = r.get(1)
	assert.False(t, ok)

	// An evicted document starts over from Pending.
	_, err = r.set(1, core.StatusCompleted, "")
	assert.Error(t, err)
	_, err = r.set(1, core.StatusPending, "")
	assert.NoError(t, err)
}

// hookedDocumentRepository lets a test intercept writes to a real repository.
type hookedDocumentRepository struct {
	storage.DocumentRepository
	onAdd   func(doc *core.Document)
	saveErr error
}

func (r *hookedDocumentRepository) AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	if r.onAdd != nil {
		r.onAdd(doc)
	}
	return r.DocumentRepository.AddDocument(ctx, doc)
}

func (r *hookedDocumentRepository) SaveIngestionRecord(ctx context.Context, record *core.IngestionRecord) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.DocumentRepository.SaveIngestionRecord(ctx, record)
}

func TestPipeline_Status(t *testing.T) {
	p, docRepo, _ := setupTestPipeline(t, mock.NewMockEmbedder(), WithChunkSize(40), WithOverlap(0))
	ctx := context.Background()

	_, ok, err := p.Status(ctx, 404)
	require.NoError(t, err)
	assert.False(t, ok, "unknown document")

	// Records written by an earlier run answer for documents never seen live.
	doc, err := docRepo.AddDocument(ctx, textDocument("old.txt"))
	require.NoError(t, err)
	require.NoError(t, docRepo.SaveIngestionRecord(ctx, &core.IngestionRecord{
		DocumentId: doc.Id,
		Status:     core.StatusFailed,
		Error:      "extraction failed",
		FinishedAt: time.Now().UTC(),
	}))
	entry, ok, err := p.Status(ctx, doc.Id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.StatusFailed, entry.Status)
	assert.Equal(t, "extraction failed", entry.Error)
}

func TestPipeline_KeepsEntryWhenRecordNotSaved(t *testing.T) {
	docRepo, chunkRepo := setupTestRepositories(t)
	hooked := &hookedDocumentRepository{DocumentRepository: docRepo, saveErr: errors.New("disk full")}
	p, err := NewPipeline(hooked, chunkRepo, extract.New(), mock.NewMockEmbedder())
	require.NoError(t, err)
	t.Cleanup(p.Close)
	ctx := context.Background()

	doc, task, err := p.Ingest(ctx, textDocument("a.txt"), []byte("Some text."))
	require.NoError(t, err)
	require.NoError(t, waitTask(t, task))

	_, live := p.registry.get(doc.Id)
	assert.True(t, live, "only the registry knows the outcome")
	entry, ok, err := p.Status(ctx, doc.Id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, core.StatusCompleted, entry.Status)
}

func TestIngest_SlowStoreDoesNotBlockOthers(t *testing.T) {
	docRepo, chunkRepo := setupTestRepositories(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	hooked := &hookedDocumentRepository{
		DocumentRepository: docRepo,
		onAdd: func(doc *core.Document) {
			if doc.Filename == "slow.txt" {
				close(entered)
				<-release
			}
		},
	}
	p, err := NewPipeline(hooked, chunkRepo, extract.New(), mock.NewMockEmbedder(), WithPoolSize(2))
	require.NoError(t, err)
	ctx := context.Background()

	type ingested struct {
		task *Task
		err  error
	}
	slow := make(chan ingested, 1)
	go func() {
		_, task, err := p.Ingest(ctx, textDocument("slow.txt"), []byte("Slow text."))
		slow <- ingested{task, err}
	}()
	<-entered

	_, fast, err := p.Ingest(ctx, textDocument("fast.txt"), []byte("Fast text."))
	require.NoError(t, err)
	require.NoError(t, waitTask(t, fast))

	closed := make(chan struct{})
	go func() {
		p.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned while a document was being stored")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	result := <-slow
	require.NoError(t, result.err)
	require.NoError(t, waitTask(t, result.task))
	<-closed

	_, _, err = p.Ingest(ctx, textDocument("late.txt"), []byte("Late text."))
	assert.ErrorIs(t, err, ErrPipelineClosed)
}
