package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
llm:
  provider: openai
  model: test-model
store:
  backend: chromem
  path: ./db
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RAG.VariantCount != DefaultVariantCount {
		t.Fatalf("variant count default not applied: %d", cfg.RAG.VariantCount)
	}
	if cfg.RAG.TopK != DefaultTopK {
		t.Fatalf("top-k default not applied: %d", cfg.RAG.TopK)
	}
	if cfg.RAG.ChunkSize != DefaultChunkSize || cfg.RAG.ChunkOverlap != DefaultChunkOverlap {
		t.Fatalf("chunking defaults not applied: %d/%d", cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	}
	if cfg.Store.Collection != "documents" {
		t.Fatalf("collection default not applied: %q", cfg.Store.Collection)
	}
	if cfg.LLM.Temperature != 0 {
		t.Fatalf("temperature should default to 0, got %f", cfg.LLM.Temperature)
	}
}

func TestLoadConfig_ExplicitValuesKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
rag:
  variant_count: 5
  top_k: 10
  chunk_size: 1000
  chunk_overlap: 100
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RAG.VariantCount != 5 || cfg.RAG.TopK != 10 || cfg.RAG.ChunkSize != 1000 || cfg.RAG.ChunkOverlap != 100 {
		t.Fatalf("explicit values overridden: %+v", cfg.RAG)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
