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


package storage

import (
	"fmt"

	"github.com/poiesic/docqa/core"
)

// decode runs a generated unmarshaller and requires it to consume all of data.
func decode[T any](kind string, data []byte, unmarshal func([]byte) (T, int, error)) (T, error) {
	v, n, err := unmarshal(data)
	if err != nil {
		return v, fmt.Errorf("%w: %s: %w", ErrSerializationFailed, kind, err)
	}
	if n != len(data) {
		return v, fmt.Errorf("%w: %s: %d trailing bytes", ErrSerializationFailed, kind, len(data)-n)
	}
	return v, nil
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	return decode("id", data, core.IDMUS.Unmarshal)
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, err := decode("document", data, core.DocumentMUS.Unmarshal)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
// The embedding is decoded into core.Embedding here and nowhere else.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, err := decode("chunk", data, core.ChunkMUS.Unmarshal)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalIngestionRecord serializes an IngestionRecord to bytes.
func MarshalIngestionRecord(record *core.IngestionRecord) []byte {
	buf := make([]byte, core.IngestionRecordMUS.Size(*record))
	core.IngestionRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalIngestionRecord deserializes an IngestionRecord from bytes.
func UnmarshalIngestionRecord(data []byte) (*core.IngestionRecord, error) {
	record, err := decode("ingestion record", data, core.IngestionRecordMUS.Unmarshal)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
