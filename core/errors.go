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


package core

import "errors"

// Failure categories surfaced to callers.
var (
	// ErrExtraction indicates malformed or unsupported input.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmbedding indicates the embedding service failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrRerank indicates the reranking service failed.
	ErrRerank = errors.New("rerank failed")

	// ErrSynthesis indicates the answer synthesizer failed.
	ErrSynthesis = errors.New("answer synthesis failed")

	// ErrNotFound indicates an unknown document id.
	ErrNotFound = errors.New("document not found")

	// ErrValidation indicates missing or malformed request fields.
	ErrValidation = errors.New("validation failed")
)

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyText indicates the chunk Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrMissingDocumentID indicates a zero document id.
	ErrMissingDocumentID = errors.New("document id is required")

	// ErrNegativeIndex indicates a chunk order index below zero.
	ErrNegativeIndex = errors.New("chunk index cannot be negative")

	// ErrEmptySourceURL indicates the Document SourceURL field is empty.
	ErrEmptySourceURL = errors.New("source url cannot be empty")

	// ErrNegativeLength indicates a corrupt length prefix in an encoded record.
	ErrNegativeLength = errors.New("negative length")
)
