package ingestion

import (
	"context"

	"github.com/poiesic/docqa/core"
)

// Task is the handle of one document's background ingestion.
// Tasks cannot be cancelled; they always run to a terminal status.
type Task struct {
	documentID core.ID
	done       chan struct{}
	err        error
}

func newTask(documentID core.ID) *Task {
	return &Task{documentID: documentID, done: make(chan struct{})}
}

// DocumentID returns the id of the document being ingested.
func (t *Task) DocumentID() core.ID {
	return t.documentID
}

// Done is closed once the document reaches Completed or Failed.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is done, and returns the
// ingestion error, if any. A cancelled ctx does not stop the task.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the ingestion error of a finished task, or nil while it runs.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}
