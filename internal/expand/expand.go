// Package expand generates alternative phrasings of a user question to
// improve retrieval recall against vocabulary mismatch.
package expand

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"knowledge-rag/internal/models"
)

// Completer is the language model capability the expander needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var enumRe = regexp.MustCompile(models.EnumerationRegex)

type Expander struct {
	llm   Completer
	count int
}

func NewExpander(llm Completer, count int) *Expander {
	if count <= 0 {
		count = 3
	}
	return &Expander{llm: llm, count: count}
}

// Expand asks the model for alternative versions of question, one per line,
// in a single round-trip. There is no retry on malformed output; parsing
// falls back to treating each non-blank line as one variant. Variants are not
// deduplicated against the original question.
func (e *Expander) Expand(ctx context.Context, question string) ([]string, error) {
	prompt := fmt.Sprintf(models.ExpandPromptTemplate, e.count, question)
	out, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: expanding query: %v", models.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: expanding query: %v", models.ErrGeneration, err)
	}
	return ParseVariants(out), nil
}

// ParseVariants splits model output into trimmed, non-empty query strings,
// stripping any leading enumeration marker ("1.", "2)", "-", "*").
func ParseVariants(out string) []string {
	var variants []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(enumRe.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		variants = append(variants, line)
	}
	return variants
}
