package config

const (
	defaultConfigPath      = "~/.config/tccretro/config.toml"
	projectConfigName      = "tccretro.toml"
	defaultOutputDir       = "./reports"
	defaultLogDir          = "~/.local/share/tccretro/logs"
	defaultChartsSubdir    = "charts"
	defaultInputEncoding   = "auto"
	defaultRowCap          = 1000
	defaultProvider        = "bedrock"
	defaultBedrockModel    = "us.anthropic.claude-sonnet-4-5-20250929-v1:0"
	defaultAnthropicModel  = "claude-sonnet-4-5"
	defaultOpenRouterModel = "anthropic/claude-sonnet-4.5"
	defaultOpenRouterURL   = "https://openrouter.ai/api/v1/chat/completions"
	defaultRegion          = "us-east-1"
	defaultMaxTokens       = 4000
	defaultTemperature     = 0.7
	defaultTimeoutSeconds  = 120
	defaultLanguage        = "ja"
	defaultReportFormat    = "markdown"
	defaultReportTitle     = "TaskChute Cloud Retrospective"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogRetention    = 30
)

// DefaultAnalyzers lists the registry membership used when none is configured.
var DefaultAnalyzers = []string{"project", "mode", "routine"}

// DefaultDateLayouts are tried in order when parsing timeline dates.
var DefaultDateLayouts = []string{"2006-01-02", "2006/01/02", "2006/1/2", "20060102"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:    defaultOutputDir,
			LogDir:       defaultLogDir,
			StateDir:     defaultStateDir(),
			ChartsSubdir: defaultChartsSubdir,
		},
		Input: Input{
			Encoding:    defaultInputEncoding,
			DateLayouts: append([]string(nil), DefaultDateLayouts...),
		},
		Analysis: Analysis{
			RowCap:    defaultRowCap,
			Analyzers: append([]string(nil), DefaultAnalyzers...),
			Parallel:  true,
			Charts:    true,
		},
		Feedback: Feedback{
			Enabled:        true,
			Provider:       defaultProvider,
			Region:         defaultRegion,
			MaxTokens:      defaultMaxTokens,
			Temperature:    defaultTemperature,
			TimeoutSeconds: defaultTimeoutSeconds,
			Language:       defaultLanguage,
		},
		Report: Report{
			Format: defaultReportFormat,
			Title:  defaultReportTitle,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}

// DefaultModel returns the model identifier used for provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return defaultAnthropicModel
	case ProviderOpenRouter:
		return defaultOpenRouterModel
	default:
		return defaultBedrockModel
	}
}

// Feedback fallbacks applied by callers that construct settings by hand.
const (
	DefaultMaxTokens       = defaultMaxTokens
	DefaultFeedbackTimeout = defaultTimeoutSeconds
)
