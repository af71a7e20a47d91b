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


package ingestion

import (
	"context"

	"github.com/poiesic/docqa/core"
)

// processor is an internal interface for the background stage of ingestion.
type processor interface {
	// process turns the raw upload of doc into stored chunks. It returns the
	// number of chunks persisted, which is meaningful even when err is set.
	process(ctx context.Context, doc *core.Document, data []byte) (stored int, err error)
}
