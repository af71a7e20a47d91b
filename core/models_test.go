package core

import (
	"testing"
	"time"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{name: "short content", content: []byte("test content")},
		{name: "empty content", content: nil},
		{name: "binary content", content: []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)
			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	if IDFromContent([]byte("content1")) == IDFromContent([]byte("content2")) {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestProcessingStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to ProcessingStatus
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusCompleted, false},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusProcessing, StatusPending, false},
		{StatusCompleted, StatusFailed, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusFailed, StatusProcessing, false},
		{StatusFailed, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProcessingStatus_String(t *testing.T) {
	if StatusCompleted.String() != "completed" {
		t.Errorf("String() = %q", StatusCompleted.String())
	}
	if ProcessingStatus(42).String() != "status(42)" {
		t.Errorf("String() = %q", ProcessingStatus(42).String())
	}
	if !StatusFailed.IsTerminal() || StatusProcessing.IsTerminal() {
		t.Errorf("IsTerminal() mismatch")
	}
}

func TestParseStrategy(t *testing.T) {
	for _, name := range []string{"similarity", "Embedding", " similarity "} {
		got, err := ParseStrategy(name)
		if err != nil || got != StrategySimilarity {
			t.Errorf("ParseStrategy(%q) = %v, %v", name, got, err)
		}
	}
	got, err := ParseStrategy("rerank")
	if err != nil || got != StrategyRerank {
		t.Errorf("ParseStrategy(rerank) = %v, %v", got, err)
	}
	if _, err := ParseStrategy("blend"); err == nil {
		t.Errorf("ParseStrategy(blend) expected error")
	}
}

func TestStrategy_Valid(t *testing.T) {
	for _, s := range []Strategy{StrategySimilarity, StrategyRerank} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	// Aliases are resolved by ParseStrategy, not accepted raw.
	for _, s := range []Strategy{"", "embedding", "colbert", "Rerank"} {
		if s.Valid() {
			t.Errorf("%q should not be valid", s)
		}
	}
}

func TestChunkMUS_RoundTrip(t *testing.T) {
	chunk := Chunk{
		Id:         12,
		DocumentId: 3,
		Text:       "Überall ist es schön.",
		Embedding:  Embedding{0.5, -1.25, 3},
		Index:      4,
		CreatedAt:  time.UnixMicro(1700000000123456),
	}

	buf := make([]byte, ChunkMUS.Size(chunk))
	ChunkMUS.Marshal(chunk, buf)
	got, n, err := ChunkMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if n != len(buf) {
		t.Errorf("Unmarshal() consumed %d bytes, want %d", n, len(buf))
	}
	if got.Text != chunk.Text || got.Index != chunk.Index || got.DocumentId != chunk.DocumentId {
		t.Errorf("Unmarshal() = %+v, want %+v", got, chunk)
	}
	if got.Embedding.Dim() != 3 || got.Embedding[1] != -1.25 {
		t.Errorf("Unmarshal() embedding = %v", got.Embedding)
	}
	if !got.CreatedAt.Equal(chunk.CreatedAt) {
		t.Errorf("Unmarshal() created = %v, want %v", got.CreatedAt, chunk.CreatedAt)
	}
}
