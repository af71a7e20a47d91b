package core

import (
	"fmt"
	"strings"
)

// ProcessingStatus is the ingestion state of a document.
type ProcessingStatus int

const (
	// StatusPending is set when an upload is accepted, before any work starts.
	StatusPending ProcessingStatus = iota + 1
	// StatusProcessing is set when background ingestion begins.
	StatusProcessing
	// StatusCompleted is set once every chunk is embedded and persisted.
	StatusCompleted
	// StatusFailed is terminal and set on any unrecovered ingestion error.
	StatusFailed
)

var statusNames = map[ProcessingStatus]string{
	StatusPending:    "pending",
	StatusProcessing: "processing",
	StatusCompleted:  "completed",
	StatusFailed:     "failed",
}

func (s ProcessingStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// IsTerminal reports whether no further transitions are allowed.
func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next follows
// Pending -> Processing -> {Completed | Failed}. Any non-terminal state may fail.
func (s ProcessingStatus) CanTransitionTo(next ProcessingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusFailed
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// Strategy selects the retriever used to answer a query.
type Strategy string

const (
	// StrategySimilarity ranks chunks by cosine similarity of embeddings.
	StrategySimilarity Strategy = "similarity"
	// StrategyRerank ranks chunk texts with an external cross-encoder.
	StrategyRerank Strategy = "rerank"
)

// Valid reports whether s names a known retriever.
func (s Strategy) Valid() bool {
	return s == StrategySimilarity || s == StrategyRerank
}

// ParseStrategy converts a user supplied name to a Strategy.
// "embedding" is accepted as an alias for similarity.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "similarity", "embedding":
		return StrategySimilarity, nil
	case "rerank":
		return StrategyRerank, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", ErrValidation, name)
	}
}
