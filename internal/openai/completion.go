package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloo-solutions/snowbot/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultCompletionModel is the model used for answer generation.
const DefaultCompletionModel = openai.GPT4oMini

// CompletionAPI defines the interface for prompt completion
type CompletionAPI interface {
	CreateCompletion(ctx context.Context, prompt string) (string, error)
}

// GenerationConfig controls sampling for answer generation. It is fixed at
// client construction; there is no way to mutate it afterward.
type GenerationConfig struct {
	// Temperature controls sampling randomness, in [0, 1].
	Temperature float32
	// MaxTokens caps the response length. Must be positive.
	MaxTokens int
}

// DefaultGenerationConfig mirrors the sampling parameters the bot has always
// used.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{Temperature: 0.7, MaxTokens: 2048}
}

// Validate checks the configured option ranges.
func (c GenerationConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 1 {
		return fmt.Errorf("temperature %v out of [0,1]: %w", c.Temperature, domain.ErrInvalidGenConfig)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens %d must be positive: %w", c.MaxTokens, domain.ErrInvalidGenConfig)
	}
	return nil
}

// CompletionClient sends composed prompts to the generation endpoint.
type CompletionClient struct {
	api CompletionAPI
	cfg GenerationConfig
}

type completionAdapter struct {
	client *openai.Client
	model  string
	cfg    GenerationConfig
}

// CreateCompletion sends a single-turn chat completion for the prompt.
func (a *completionAdapter) CreateCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("no completion returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// CompletionConfig configures the completion client.
type CompletionConfig struct {
	APIKey     string
	BaseURL    string // test override
	Model      string
	Generation GenerationConfig
}

// NewCompletionClient creates a completion client with explicit configuration.
func NewCompletionClient(cfg CompletionConfig) (*CompletionClient, error) {
	if err := cfg.Generation.Validate(); err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = DefaultCompletionModel
	}
	return &CompletionClient{
		api: &completionAdapter{
			client: newAPIClient(cfg.APIKey, cfg.BaseURL),
			model:  model,
			cfg:    cfg.Generation,
		},
		cfg: cfg.Generation,
	}, nil
}

// Complete sends the prompt and returns the raw model text.
func (c *CompletionClient) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyText
	}

	text, err := c.api.CreateCompletion(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}
	return text, nil
}
