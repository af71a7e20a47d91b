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


// Package storage provides the storage abstraction layer for docqa.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic. Ingestion writes chunks through ChunkRepository one at a
// time, and retrieval reads them back per document in order.
//
// # Architecture
//
//   - Repository: Transaction support and lifecycle shared by all repositories
//   - DocumentRepository: Documents and their terminal ingestion records
//   - ChunkRepository: Chunks with their embeddings, ordered by index
//
// # Usage
//
// Create repositories backed by a single BadgerDB instance:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	docs, chunks, err := badger.NewRepositories(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer docs.Close()
//
// Use in tests with in-memory storage:
//
//	docs, chunks, backend, err := badger.NewMemoryRepositories()
//
// # Encoding
//
// Records are encoded with mus-go serializers from the core package. Embeddings
// are decoded into core.Embedding at this boundary; callers never see raw bytes.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
