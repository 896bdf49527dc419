package rag

import (
	"context"
	"strings"
	"testing"

	"knowledge-rag/internal/config"
	"knowledge-rag/internal/models"
)

// scriptedLLM answers the expansion prompt with a fixed numbered list and
// every other prompt with a fixed answer, capturing the synthesis prompt.
type scriptedLLM struct {
	variants        string
	answer          string
	synthesisPrompt string
}

func (s *scriptedLLM) Complete(_ context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "alternative questions") {
		return s.variants, nil
	}
	s.synthesisPrompt = prompt
	return s.answer, nil
}

// uniformStore returns the same result set for every query.
type uniformStore struct {
	chunks []models.Chunk
}

func (u *uniformStore) Search(context.Context, string, int) ([]models.Chunk, error) {
	return u.chunks, nil
}

func TestQuery_EndToEnd(t *testing.T) {
	llm := &scriptedLLM{
		variants: "1. How does the sales team operate within NASA?\n2. What are the responsibilities of the NASA sales team?",
		answer:   "The NASA sales team manages commercial partnerships.",
	}
	store := &uniformStore{chunks: []models.Chunk{{
		ID:      "c1",
		Content: "the sales team handles contracts and partnerships",
		Metadata: map[string]string{
			models.MetaName: "Sales Organization Overview",
		},
	}}}

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	pipeline := NewRAG(store, llm, cfg)

	response, err := pipeline.Query(context.Background(), "what is the nasa sales team?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if response.Content != "The NASA sales team manages commercial partnerships." {
		t.Fatalf("answer not returned verbatim: %q", response.Content)
	}
	if response.Source != "Sales Organization Overview" {
		t.Fatalf("expected single source label, got %q", response.Source)
	}

	// Three queries hit the store, all returning the same chunk; the
	// synthesis context must contain the source block exactly once.
	if got := strings.Count(llm.synthesisPrompt, "SOURCE: Sales Organization Overview"); got != 1 {
		t.Fatalf("expected exactly 1 source block in synthesis context, got %d:\n%s", got, llm.synthesisPrompt)
	}
	if !strings.Contains(llm.synthesisPrompt, "what is the nasa sales team?") {
		t.Fatalf("synthesis prompt missing original question:\n%s", llm.synthesisPrompt)
	}
}
