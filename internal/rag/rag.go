// Package rag wires the question-answering pipeline: expand the question,
// fan out retrieval, synthesize an answer from the merged context.
package rag

import (
	"context"
	"strings"

	"knowledge-rag/internal/config"
	"knowledge-rag/internal/expand"
	"knowledge-rag/internal/models"
	"knowledge-rag/internal/retriever"
	"knowledge-rag/internal/synthesize"

	"github.com/rs/zerolog/log"
)

// Completer is the language model capability shared by expansion and
// synthesis.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type RAG struct {
	retriever   *retriever.Retriever
	synthesizer *synthesize.Synthesizer
}

// NewRAG builds the pipeline over a passage store and a language model.
// Each Query call is independent; no state is held between invocations.
func NewRAG(store retriever.Searcher, llm Completer, cfg *config.Config) *RAG {
	expander := expand.NewExpander(llm, cfg.RAG.VariantCount)
	return &RAG{
		retriever:   retriever.New(store, expander, cfg.RAG.TopK),
		synthesizer: synthesize.NewSynthesizer(llm),
	}
}

// Query answers one question from the indexed passages.
func (r *RAG) Query(ctx context.Context, query string) (*models.Answer, error) {
	chunks, err := r.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("chunks", len(chunks)).Msg("Retrieved context")

	content, err := r.synthesizer.Synthesize(ctx, query, chunks)
	if err != nil {
		return nil, err
	}

	return &models.Answer{
		Query:   query,
		Source:  sourceLabels(chunks),
		Content: content,
	}, nil
}

func sourceLabels(chunks []models.Chunk) string {
	seen := make(map[string]struct{})
	var names []string
	for _, chunk := range chunks {
		name := chunk.Name()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
