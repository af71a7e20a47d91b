// Package reembed provides functionality for reembedding stored chunks
// with a new or updated embedding model.
//
// This package supports batch processing of chunks with bounded parallelism,
// progress tracking, and retry with exponential backoff for transient
// embedder failures. Every vector written by one run has the same dimension, so
// similarity retrieval keeps working once the run completes.
package reembed
