// Package rerank is a client for cross-encoder services exposing a
// Cohere-style POST /rerank endpoint (Cohere, Jina, Hugging Face TEI, vLLM).
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/docqa/ai"
)

const defaultTimeout = 30 * time.Second

// Client implements ai.Reranker over HTTP.
type Client struct {
	url    string
	model  string
	apiKey string
	http   *http.Client
	logger *slog.Logger
}

var _ ai.Reranker = (*Client)(nil)

type request struct {
	Model           string   `json:"model"`
	Query           string   `json:"query"`
	Documents       []string `json:"documents"`
	TopN            int      `json:"top_n,omitempty"`
	ReturnDocuments bool     `json:"return_documents"`
}

type response struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// newClient is an internal constructor that returns the concrete type.
func newClient(config *ai.Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		url:    strings.TrimSuffix(config.RerankHost, "/") + "/rerank",
		model:  config.RerankModel,
		apiKey: config.RerankAPIKey,
		http:   &http.Client{Timeout: defaultTimeout},
		logger: slog.Default().With("component", "reranker"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClient creates a reranker for the host and model in config.
//
// Returns ai.Reranker interface to enforce abstraction.
func NewClient(config *ai.Config, opts ...Option) (ai.Reranker, error) {
	return newClient(config, opts...)
}

// Rerank scores documents against query and returns up to topN results.
// An empty batch returns no results without calling the service.
func (c *Client) Rerank(ctx context.Context, query string, documents []string, topN int) ([]ai.RerankResult, error) {
	if len(documents) == 0 {
		return []ai.RerankResult{}, nil
	}

	body, err := json.Marshal(request{
		Model:     c.model,
		Query:     query,
		Documents: documents,
		TopN:      topN,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("reranking", "documents", len(documents), "top_n", topN)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rerank service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}

	results := make([]ai.RerankResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, ai.RerankResult{Index: r.Index, Score: r.RelevanceScore})
	}
	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}
