package llmservice

import (
	"context"
	"fmt"
	"strings"

	"knowledge-rag/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// Client is a completion client over an openai-compatible or ollama endpoint.
// Temperature comes from config; 0 is deterministic-leaning.
type Client struct {
	llm         llms.Model
	temperature float64
}

func NewClient(cfg *config.LLMConfig) (*Client, error) {
	llm, err := newModel(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm, temperature: cfg.Temperature}, nil
}

func newModel(cfg *config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
	case "openai", "":
		return openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// Complete sends one prompt and returns the model's text output verbatim.
// No retries; the caller bounds the call with its context.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}
	log.Debug().Int("prompt_len", len(prompt)).Msg("Generating completion")
	resp, err := c.llm.GenerateContent(ctx, messages, llms.WithTemperature(c.temperature))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Content, nil
}
