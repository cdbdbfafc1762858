// Package feedback turns an assembled prompt payload into narrative
// retrospective text by calling a language-model backend.
//
// Failures are classified into AuthError, ServiceError, and
// EmptyResponseError so the report can degrade to a fallback summary
// instead of aborting.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tccretro/internal/config"
	"tccretro/internal/logging"
	"tccretro/internal/prompt"
	"tccretro/internal/services"
)

// Backend is a single-turn text completion provider.
type Backend interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// Checker is implemented by backends that can verify credentials without
// generating feedback.
type Checker interface {
	Check(ctx context.Context) error
}

// Generator produces feedback text from a prompt payload.
type Generator struct {
	backend  Backend
	timeout  time.Duration
	language string
	logger   *slog.Logger
}

// Option customizes a Generator.
type Option func(*Generator)

// WithBackend replaces the provider selected from configuration.
func WithBackend(b Backend) Option {
	return func(g *Generator) { g.backend = b }
}

// WithLogger sets the generator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithTimeout overrides the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// New builds a generator for the configured provider. Backend construction
// failures caused by missing credentials are returned as *AuthError.
func New(ctx context.Context, cfg config.Feedback, opts ...Option) (*Generator, error) {
	g := &Generator{
		timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
		language: cfg.Language,
		logger:   logging.NewNop(),
	}
	if g.timeout <= 0 {
		g.timeout = time.Duration(config.DefaultFeedbackTimeout) * time.Second
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.backend != nil {
		return g, nil
	}
	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	g.backend = backend
	return g, nil
}

func newBackend(ctx context.Context, cfg config.Feedback) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case config.ProviderAnthropic:
		return NewAnthropicBackend(cfg)
	case config.ProviderBedrock, "":
		return NewBedrockBackend(ctx, cfg)
	case config.ProviderOpenRouter:
		return NewOpenRouterBackend(cfg)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "feedback", "select provider",
			fmt.Sprintf("unknown provider %q", cfg.Provider), nil)
	}
}

// Provider returns the backend name.
func (g *Generator) Provider() string {
	if g == nil || g.backend == nil {
		return ""
	}
	return g.backend.Name()
}

// Generate sends the payload and returns the trimmed narrative text.
func (g *Generator) Generate(ctx context.Context, payload prompt.Payload) (string, error) {
	if g == nil || g.backend == nil {
		return "", &ServiceError{Err: errors.New("generator not configured")}
	}
	if strings.TrimSpace(payload.Text) == "" {
		return "", services.Wrap(services.ErrValidation, "feedback", "generate", "empty prompt payload", nil)
	}
	provider := g.backend.Name()
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	g.logger.Info("requesting feedback",
		logging.String(logging.FieldEventType, "feedback_request"),
		logging.String("provider", provider),
		logging.Int("sample_rows", payload.SampleSize()),
		logging.Bool("truncated", payload.Truncated),
	)
	text, err := g.backend.Complete(callCtx, Instructions(g.language), payload.Text)
	if err != nil {
		classified := classify(provider, err)
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return "", ctx.Err()
		}
		g.logger.Warn("feedback request failed",
			logging.String(logging.FieldEventType, "feedback_failed"),
			logging.String("provider", provider),
			logging.String("reason", services.Reason(classified)),
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(classified),
		)
		return "", classified
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &EmptyResponseError{Provider: provider}
	}
	g.logger.Info("feedback received",
		logging.String(logging.FieldEventType, "feedback_received"),
		logging.String("provider", provider),
		logging.Int("chars", len([]rune(text))),
		logging.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}

// Check verifies credentials and connectivity when the backend supports it.
func (g *Generator) Check(ctx context.Context) error {
	if g == nil || g.backend == nil {
		return &ServiceError{Err: errors.New("generator not configured")}
	}
	checker, ok := g.backend.(Checker)
	if !ok {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := checker.Check(callCtx); err != nil {
		return classify(g.backend.Name(), err)
	}
	return nil
}

// classify maps backend errors onto the feedback error taxonomy.
func classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	var (
		authErr  *AuthError
		svcErr   *ServiceError
		emptyErr *EmptyResponseError
	)
	switch {
	case errors.As(err, &authErr), errors.As(err, &svcErr), errors.As(err, &emptyErr):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return &ServiceError{Provider: provider, Timeout: true, Err: err}
	}
	if status, ok := statusCode(err); ok {
		if status == 401 || status == 403 {
			return &AuthError{Provider: provider, Err: err}
		}
		return &ServiceError{Provider: provider, StatusCode: status, Err: err}
	}
	if isAuthFailure(err) {
		return &AuthError{Provider: provider, Err: err}
	}
	if isEmpty(err) {
		return &EmptyResponseError{Provider: provider, Detail: err.Error()}
	}
	return &ServiceError{Provider: provider, Err: err}
}
