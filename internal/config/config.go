package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file leaves a setting unset.
const (
	DefaultVariantCount = 3
	DefaultTopK         = 4
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultTemperature  = 0
)

// LLMConfig describes one model endpoint, used for both the completion and
// the embedding backend.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "openai" or "ollama"
	BaseURL     string  `yaml:"base_url"`
	Key         string  `yaml:"key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

type StoreConfig struct {
	Backend     string `yaml:"backend"` // "chromem" or "postgres"
	Path        string `yaml:"path"`
	Collection  string `yaml:"collection"`
	InMemory    bool   `yaml:"in_memory"`
	PostgresURL string `yaml:"postgres_url"`
	PostgresKey string `yaml:"postgres_key"`
	Debug       bool   `yaml:"debug"`
}

type RAGConfig struct {
	VariantCount  int    `yaml:"variant_count"`
	TopK          int    `yaml:"top_k"`
	ChunkSize     int    `yaml:"chunk_size"`
	ChunkOverlap  int    `yaml:"chunk_overlap"`
	EncryptionKey string `yaml:"encryption_key"`
}

type Config struct {
	LLM        LLMConfig   `yaml:"llm"`
	EmbedLLM   LLMConfig   `yaml:"embed_llm"`
	Store      StoreConfig `yaml:"store"`
	RAG        RAGConfig   `yaml:"rag"`
	LedgerPath string      `yaml:"ledger_path"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset settings with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.RAG.VariantCount <= 0 {
		c.RAG.VariantCount = DefaultVariantCount
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = DefaultTopK
	}
	if c.RAG.ChunkSize <= 0 {
		c.RAG.ChunkSize = DefaultChunkSize
	}
	if c.RAG.ChunkOverlap <= 0 {
		c.RAG.ChunkOverlap = DefaultChunkOverlap
	}
	if c.Store.Collection == "" {
		c.Store.Collection = "documents"
	}
}
