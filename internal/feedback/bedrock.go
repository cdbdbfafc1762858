package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"tccretro/internal/config"
)

// credentialError marks a failed AWS credential resolution.
type credentialError struct {
	err error
}

func (e *credentialError) Error() string { return fmt.Sprintf("aws credentials: %v", e.err) }

func (e *credentialError) Unwrap() error { return e.err }

// BedrockBackend is an AnthropicBackend routed through Amazon Bedrock.
type BedrockBackend struct {
	*AnthropicBackend
	aws aws.Config
}

// NewBedrockBackend resolves the default AWS credential chain and builds a
// Bedrock-routed Messages client. A chain that yields no credentials is
// reported as *AuthError.
func NewBedrockBackend(ctx context.Context, cfg config.Feedback, extra ...option.RequestOption) (*BedrockBackend, error) {
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, &AuthError{Provider: config.ProviderBedrock, Err: &credentialError{err: err}}
	}
	return NewBedrockBackendWithConfig(ctx, cfg, awsCfg, extra...)
}

// NewBedrockBackendWithConfig builds the backend from an already-loaded AWS
// configuration.
func NewBedrockBackendWithConfig(ctx context.Context, cfg config.Feedback, awsCfg aws.Config, extra ...option.RequestOption) (*BedrockBackend, error) {
	if awsCfg.Credentials == nil {
		return nil, &AuthError{Provider: config.ProviderBedrock, Err: &credentialError{err: fmt.Errorf("no credential provider configured")}}
	}
	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		return nil, &AuthError{Provider: config.ProviderBedrock, Err: &credentialError{err: err}}
	}
	opts := append([]option.RequestOption{bedrock.WithConfig(awsCfg)}, extra...)
	return &BedrockBackend{
		AnthropicBackend: newMessagesBackend(config.ProviderBedrock, cfg, opts),
		aws:              awsCfg,
	}, nil
}

// Region returns the AWS region requests are sent to.
func (b *BedrockBackend) Region() string { return b.aws.Region }

// Check re-resolves credentials.
func (b *BedrockBackend) Check(ctx context.Context) error {
	if _, err := b.aws.Credentials.Retrieve(ctx); err != nil {
		return &AuthError{Provider: b.name, Err: &credentialError{err: err}}
	}
	return nil
}
