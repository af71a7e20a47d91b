package mock

import (
	"context"
	"strings"
	"sync/atomic"
)

// MockSynthesizer is a test double for ai.Synthesizer.
type MockSynthesizer struct {
	// SynthesizeFunc is called by Synthesize if set.
	// If nil, the passages are joined into the answer.
	SynthesizeFunc func(ctx context.Context, question string, passages []string) (string, error)

	callCount atomic.Int64
}

// NewMockSynthesizer creates a mock synthesizer that echoes its passages.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{}
}

// WithSynthesizeFunc sets SynthesizeFunc and returns the mock for chaining.
func (m *MockSynthesizer) WithSynthesizeFunc(fn func(ctx context.Context, question string, passages []string) (string, error)) *MockSynthesizer {
	m.SynthesizeFunc = fn
	return m
}

// Synthesize returns the passages joined by spaces.
func (m *MockSynthesizer) Synthesize(ctx context.Context, question string, passages []string) (string, error) {
	m.callCount.Add(1)

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, question, passages)
	}
	return strings.Join(passages, " "), nil
}

// CallCount returns the number of times Synthesize was called.
func (m *MockSynthesizer) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *MockSynthesizer) Reset() {
	m.callCount.Store(0)
	m.SynthesizeFunc = nil
}
