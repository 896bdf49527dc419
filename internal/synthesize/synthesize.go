// Package synthesize turns retrieved chunks and the original question into a
// final answer via one language model call.
package synthesize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"knowledge-rag/internal/models"
)

// Completer is the language model capability the synthesizer needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Synthesizer struct {
	llm Completer
}

func NewSynthesizer(llm Completer) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// BuildContext formats chunks into the synthesis context block, in the order
// given. Each chunk becomes a source-labelled block; blocks are joined by a
// blank line.
func BuildContext(chunks []models.Chunk) string {
	blocks := make([]string, len(chunks))
	for i, chunk := range chunks {
		blocks[i] = models.ContextSeparator + "SOURCE: " + chunk.Name() + "\n" + chunk.Content + models.ContextSeparator
	}
	return strings.Join(blocks, "\n")
}

// Synthesize builds the final prompt from the chunks and the original
// question and returns the model output verbatim. No post-processing, no
// retry.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, chunks []models.Chunk) (string, error) {
	prompt := fmt.Sprintf(models.AnswerPromptTemplate, BuildContext(chunks), question)
	answer, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: synthesizing answer: %v", models.ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: synthesizing answer: %v", models.ErrGeneration, err)
	}
	return answer, nil
}
