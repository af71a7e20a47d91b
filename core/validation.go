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

import (
	"fmt"
	"strings"
)

// ValidateDocument validates a Document before it is stored.
//
// Validation rules:
//   - SourceURL must not be empty
//
// NOT validated:
//   - ID (0 is valid, assigned from database sequences)
//   - Title (falls back to the filename)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.SourceURL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptySourceURL)
	}

	return nil
}

// ValidateChunk validates a Chunk before it is stored.
//
// Validation rules:
//   - Text must not be empty
//   - DocumentId must be set
//   - Index must not be negative
//
// NOT validated:
//   - Embedding (can be empty until embedded)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if strings.TrimSpace(chunk.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.DocumentId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrMissingDocumentID)
	}

	if chunk.Index < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeIndex)
	}

	return nil
}

// ValidateQuery checks the required fields of a question against a document.
func ValidateQuery(documentID ID, question string) error {
	if documentID == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrMissingDocumentID)
	}
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("%w: question cannot be empty", ErrValidation)
	}
	return nil
}
