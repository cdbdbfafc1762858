package feedback

import (
	"context"

	"tccretro/internal/config"
	"tccretro/internal/services/llm"
)

// OpenRouterBackend sends chat completions to an OpenAI-compatible endpoint.
type OpenRouterBackend struct {
	client    *llm.Client
	maxTokens int
	temp      float64
}

// NewOpenRouterBackend builds the backend; a missing key is an *AuthError.
func NewOpenRouterBackend(cfg config.Feedback, opts ...llm.Option) (*OpenRouterBackend, error) {
	if cfg.APIKey == "" {
		return nil, &AuthError{Provider: config.ProviderOpenRouter, Err: llm.ErrMissingAPIKey}
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultModel(config.ProviderOpenRouter)
	}
	client := llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          model,
		Title:          "tccretro",
		TimeoutSeconds: cfg.TimeoutSeconds,
	}, opts...)
	return &OpenRouterBackend{client: client, maxTokens: cfg.MaxTokens, temp: cfg.Temperature}, nil
}

func (b *OpenRouterBackend) Name() string { return config.ProviderOpenRouter }

func (b *OpenRouterBackend) Complete(ctx context.Context, system, user string) (string, error) {
	return b.client.CompleteText(ctx, llm.Request{
		System:      system,
		User:        user,
		MaxTokens:   b.maxTokens,
		Temperature: b.temp,
	})
}

func (b *OpenRouterBackend) Check(ctx context.Context) error {
	return b.client.HealthCheck(ctx)
}
