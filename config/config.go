// Package config loads docqa settings from a YAML file and the environment.
//
// API keys are never stored in the file itself: the file names the
// environment variables that hold them, and LoadEnv reads a .env file into
// the environment first when one exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/poiesic/docqa/ai"
	"github.com/poiesic/docqa/chunking"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/retrieval"
	"gopkg.in/yaml.v3"
)

// Blob store types.
const (
	BlobStoreBadger = "badger"
	BlobStoreGCS    = "gcs"
)

// AIConfig configures the embedding, rerank and chat services.
type AIConfig struct {
	EmbeddingHost   string `yaml:"embedding_host"`
	ChatHost        string `yaml:"chat_host"`
	RerankHost      string `yaml:"rerank_host"`
	EmbeddingModel  string `yaml:"embedding_model"`
	ChatModel       string `yaml:"chat_model"`
	RerankModel     string `yaml:"rerank_model"`
	APIKeyEnv       string `yaml:"api_key_env"`
	RerankAPIKeyEnv string `yaml:"rerank_api_key_env"`
	Synthesizer     string `yaml:"synthesizer"`
	VertexProject   string `yaml:"vertex_project,omitempty"`
	VertexRegion    string `yaml:"vertex_region,omitempty"`
}

// BlobConfig selects where raw uploads are kept.
type BlobConfig struct {
	Type   string `yaml:"type"`
	Bucket string `yaml:"bucket,omitempty"`
}

// StorageConfig locates the database and the blob store.
type StorageConfig struct {
	Path string     `yaml:"path"`
	Blob BlobConfig `yaml:"blob"`
}

// IngestionConfig tunes the ingestion pipeline.
type IngestionConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
	PoolSize  int `yaml:"pool_size"`
}

// RetrievalConfig tunes passage retrieval.
type RetrievalConfig struct {
	TopK     int    `yaml:"top_k"`
	Strategy string `yaml:"strategy"`
}

// Config is the root configuration structure.
type Config struct {
	AI        AIConfig        `yaml:"ai"`
	Storage   StorageConfig   `yaml:"storage"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a config from path. If the file does not exist, returns defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEnv loads the given .env files (".env" when none are given) into the
// process environment. Missing files are ignored; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	def := ai.DefaultConfig()
	a := &cfg.AI
	if a.EmbeddingHost == "" {
		a.EmbeddingHost = def.EmbeddingHost
	}
	if a.ChatHost == "" {
		a.ChatHost = def.ChatHost
	}
	if a.RerankHost == "" {
		a.RerankHost = def.RerankHost
	}
	if a.EmbeddingModel == "" {
		a.EmbeddingModel = def.EmbeddingModel
	}
	if a.ChatModel == "" {
		a.ChatModel = def.ChatModel
	}
	if a.RerankModel == "" {
		a.RerankModel = def.RerankModel
	}
	if a.APIKeyEnv == "" {
		a.APIKeyEnv = "DOCQA_API_KEY"
	}
	if a.RerankAPIKeyEnv == "" {
		a.RerankAPIKeyEnv = "DOCQA_RERANK_API_KEY"
	}
	if a.Synthesizer == "" {
		a.Synthesizer = def.Synthesizer
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "docqa.db"
	}
	if cfg.Storage.Blob.Type == "" {
		cfg.Storage.Blob.Type = BlobStoreBadger
	}

	if cfg.Ingestion.ChunkSize == 0 {
		cfg.Ingestion.ChunkSize = chunking.DefaultTargetSize
	}
	if cfg.Ingestion.Overlap == 0 {
		cfg.Ingestion.Overlap = chunking.DefaultOverlap
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = retrieval.DefaultTopK
	}
	if cfg.Retrieval.Strategy == "" {
		cfg.Retrieval.Strategy = string(core.StrategySimilarity)
	}
}

// Validate checks the settings that defaults cannot repair.
func (c *Config) Validate() error {
	if err := chunking.Validate(c.Ingestion.ChunkSize, c.Ingestion.Overlap); err != nil {
		return err
	}
	if _, err := core.ParseStrategy(c.Retrieval.Strategy); err != nil {
		return err
	}
	switch c.Storage.Blob.Type {
	case BlobStoreBadger:
	case BlobStoreGCS:
		if c.Storage.Blob.Bucket == "" {
			return fmt.Errorf("%w: storage.blob.bucket is required for gcs", core.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown blob store %q", core.ErrValidation, c.Storage.Blob.Type)
	}
	return c.AIConfig().Validate()
}

// AIConfig builds the AI provider configuration, reading API keys from the
// environment variables named in the file.
func (c *Config) AIConfig() *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithChatHost(c.AI.ChatHost),
		ai.WithRerankHost(c.AI.RerankHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithChatModel(c.AI.ChatModel),
		ai.WithRerankModel(c.AI.RerankModel),
		ai.WithAPIKey(os.Getenv(c.AI.APIKeyEnv)),
		ai.WithRerankAPIKey(os.Getenv(c.AI.RerankAPIKeyEnv)),
	}
	cfg := ai.NewConfig(opts...)
	cfg.Synthesizer = c.AI.Synthesizer
	if c.AI.Synthesizer == ai.SynthesizerVertex {
		ai.WithVertex(c.AI.VertexProject, c.AI.VertexRegion)(cfg)
	}
	return cfg
}
