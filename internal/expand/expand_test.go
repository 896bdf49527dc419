package expand

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"knowledge-rag/internal/models"
)

type fakeCompleter struct {
	out    string
	err    error
	prompt string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}

func TestParseVariants_NumberedList(t *testing.T) {
	out := "1. How does the sales team operate within NASA?\n2. What are the responsibilities of the NASA sales team?\n3. Who leads sales at NASA?"
	variants := ParseVariants(out)
	if len(variants) != 3 {
		t.Fatalf("expected 3 variants, got %d: %v", len(variants), variants)
	}
	if variants[0] != "How does the sales team operate within NASA?" {
		t.Fatalf("enumeration marker not stripped: %q", variants[0])
	}
}

func TestParseVariants_MalformedInput(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "dashes instead of numbers",
			in:   "- first question\n- second question",
			want: []string{"first question", "second question"},
		},
		{
			name: "extra blank lines and missing numbers",
			in:   "\n\nfirst question\n\n2) second question\n\n",
			want: []string{"first question", "second question"},
		},
		{
			name: "single line output",
			in:   "just one rephrasing",
			want: []string{"just one rephrasing"},
		},
		{
			name: "parenthesis numbering",
			in:   "1) alpha\n2) beta",
			want: []string{"alpha", "beta"},
		},
		{
			name: "empty output",
			in:   "   \n\n  ",
			want: nil,
		},
	}

	for _, tc := range cases {
		got := ParseVariants(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: expected %d variants, got %d: %v", tc.name, len(tc.want), len(got), got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: variant %d: expected %q, got %q", tc.name, i, tc.want[i], got[i])
			}
		}
	}
}

func TestParseVariants_DoesNotDropUnnumberedLines(t *testing.T) {
	// Fallback rule: a differently formatted list still yields one variant
	// per non-blank line.
	got := ParseVariants("Here are some options:\nfirst\nsecond")
	if len(got) != 3 {
		t.Fatalf("expected 3 lines kept, got %d: %v", len(got), got)
	}
}

func TestExpand_PromptCarriesCountAndQuestion(t *testing.T) {
	llm := &fakeCompleter{out: "1. a\n2. b\n3. c"}
	e := NewExpander(llm, 3)

	variants, err := e.Expand(context.Background(), "what is the nasa sales team?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(variants))
	}
	if !strings.Contains(llm.prompt, "what is the nasa sales team?") {
		t.Fatalf("prompt does not contain the question: %q", llm.prompt)
	}
	if !strings.Contains(llm.prompt, "3 different versions") {
		t.Fatalf("prompt does not carry the variant count: %q", llm.prompt)
	}
}

func TestExpand_GenerationError(t *testing.T) {
	llm := &fakeCompleter{err: fmt.Errorf("quota exceeded")}
	e := NewExpander(llm, 3)

	_, err := e.Expand(context.Background(), "question")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, models.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestExpand_DeadlineMapsToTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	llm := &fakeCompleter{err: context.DeadlineExceeded}
	e := NewExpander(llm, 3)

	_, err := e.Expand(ctx, "question")
	if !errors.Is(err, models.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestExpand_CancellationIsNotTimeout(t *testing.T) {
	// ErrTimeout is reserved for deadline expiry; a plain cancellation
	// surfaces as a generation failure.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &fakeCompleter{err: context.Canceled}
	e := NewExpander(llm, 3)

	_, err := e.Expand(ctx, "question")
	if errors.Is(err, models.ErrTimeout) {
		t.Fatalf("cancellation must not map to ErrTimeout: %v", err)
	}
	if !errors.Is(err, models.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}
