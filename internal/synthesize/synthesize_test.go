package synthesize

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

func namedChunk(name, content string) models.Chunk {
	return models.Chunk{Content: content, Metadata: map[string]string{models.MetaName: name}}
}

func TestBuildContext_ExactTemplate(t *testing.T) {
	chunks := []models.Chunk{
		namedChunk("A", "<contentA>"),
		namedChunk("B", "<contentB>"),
	}
	want := "\n---\nSOURCE: A\n<contentA>\n---\n\n\n---\nSOURCE: B\n<contentB>\n---\n"
	if got := BuildContext(chunks); got != want {
		t.Fatalf("context template mismatch:\nwant %q\ngot  %q", want, got)
	}
}

func TestBuildContext_SingleChunk(t *testing.T) {
	got := BuildContext([]models.Chunk{namedChunk("A", "body")})
	want := "\n---\nSOURCE: A\nbody\n---\n"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestBuildContext_MissingNameFallsBack(t *testing.T) {
	got := BuildContext([]models.Chunk{{Content: "body"}})
	if !strings.Contains(got, "SOURCE: unknown\n") {
		t.Fatalf("expected fallback source label, got %q", got)
	}
}

func TestSynthesize_PromptCarriesContextAndQuestion(t *testing.T) {
	llm := &fakeCompleter{out: "the answer"}
	s := NewSynthesizer(llm)

	answer, err := s.Synthesize(context.Background(), "what is the nasa sales team?", []models.Chunk{
		namedChunk("Sales Organization Overview", "the sales team handles contracts"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "the answer" {
		t.Fatalf("model output not returned verbatim: %q", answer)
	}
	if !strings.Contains(llm.prompt, "SOURCE: Sales Organization Overview") {
		t.Fatalf("prompt missing source block: %q", llm.prompt)
	}
	if !strings.Contains(llm.prompt, "what is the nasa sales team?") {
		t.Fatalf("prompt missing question: %q", llm.prompt)
	}
}

func TestSynthesize_GenerationError(t *testing.T) {
	llm := &fakeCompleter{err: fmt.Errorf("transport error")}
	s := NewSynthesizer(llm)

	_, err := s.Synthesize(context.Background(), "q", nil)
	if !errors.Is(err, models.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestSynthesize_DeadlineMapsToTimeout(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	llm := &fakeCompleter{err: context.DeadlineExceeded}
	s := NewSynthesizer(llm)

	_, err := s.Synthesize(ctx, "q", nil)
	if !errors.Is(err, models.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestSynthesize_CancellationIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &fakeCompleter{err: context.Canceled}
	s := NewSynthesizer(llm)

	_, err := s.Synthesize(ctx, "q", nil)
	if errors.Is(err, models.ErrTimeout) {
		t.Fatalf("cancellation must not map to ErrTimeout: %v", err)
	}
	if !errors.Is(err, models.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}
