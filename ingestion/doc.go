// Package ingestion provides pipeline orchestration for uploaded documents.
//
// The Pipeline type manages the ingestion workflow for a document:
//   - Storing the document row and marking it Pending
//   - Extracting, segmenting and chunking its text in the background
//   - Embedding each chunk and persisting it as soon as it is embedded
//   - Recording the terminal outcome (Completed or Failed)
//
// Each document runs as one task on a non-blocking worker pool. A saturated
// pool rejects the document with ErrPipelineBusy instead of queueing it.
// Errors during background processing never escape the task: they become a
// Failed status with an error message, visible through Pipeline.Status and
// the stored ingestion record.
package ingestion
