package feedback

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"tccretro/internal/config"
	"tccretro/internal/services/llm"
)

// AnthropicBackend calls the Messages API, either directly or through
// Bedrock depending on the request options it was built with.
type AnthropicBackend struct {
	name        string
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicBackend builds a backend against the Anthropic API.
func NewAnthropicBackend(cfg config.Feedback, extra ...option.RequestOption) (*AnthropicBackend, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, &AuthError{Provider: config.ProviderAnthropic, Err: errors.New("api key not set (ANTHROPIC_API_KEY)")}
	}
	opts := []option.RequestOption{option.WithAPIKey(key)}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	opts = append(opts, extra...)
	return newMessagesBackend(config.ProviderAnthropic, cfg, opts), nil
}

func newMessagesBackend(name string, cfg config.Feedback, opts []option.RequestOption) *AnthropicBackend {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = config.DefaultModel(name)
	}
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = config.DefaultMaxTokens
	}
	return &AnthropicBackend{
		name:        name,
		client:      anthropic.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}
}

// Name implements Backend.
func (b *AnthropicBackend) Name() string { return b.name }

// Model returns the model identifier sent with each request.
func (b *AnthropicBackend) Model() string { return b.model }

// Complete implements Backend.
func (b *AnthropicBackend) Complete(ctx context.Context, system, user string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(b.model),
		MaxTokens:   b.maxTokens,
		Temperature: anthropic.Float(b.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if strings.TrimSpace(system) != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		sb.WriteString(block.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", &EmptyResponseError{Provider: b.name, Detail: "stop_reason=" + string(msg.StopReason)}
	}
	return text, nil
}

// Check sends a minimal request to confirm the key and model are accepted.
func (b *AnthropicBackend) Check(ctx context.Context) error {
	_, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: 8,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Reply with the single word OK.")),
		},
	})
	return err
}

func statusCode(err error) (int, bool) {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		return apiErr.StatusCode, true
	}
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}
	return 0, false
}

func isAuthFailure(err error) bool {
	if errors.Is(err, llm.ErrMissingAPIKey) {
		return true
	}
	var credErr *credentialError
	return errors.As(err, &credErr)
}

func isEmpty(err error) bool {
	var emptyErr *llm.EmptyContentError
	return errors.As(err, &emptyErr)
}
