package config

import (
	"fmt"
	"os"
	"strings"
)

// Feedback providers.
const (
	ProviderBedrock    = "bedrock"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeInput()
	c.normalizeAnalysis()
	c.normalizeFeedback()
	c.normalizeReport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.ChartsSubdir = strings.TrimSpace(c.Paths.ChartsSubdir)
	if c.Paths.ChartsSubdir == "" {
		c.Paths.ChartsSubdir = defaultChartsSubdir
	}
	return nil
}

func (c *Config) normalizeInput() {
	enc := strings.ToLower(strings.TrimSpace(c.Input.Encoding))
	switch enc {
	case "", "auto":
		enc = "auto"
	case "utf8", "utf-8":
		enc = "utf-8"
	case "sjis", "shift-jis", "shift_jis", "cp932":
		enc = "shift_jis"
	}
	c.Input.Encoding = enc

	layouts := make([]string, 0, len(c.Input.DateLayouts))
	for _, layout := range c.Input.DateLayouts {
		if layout = strings.TrimSpace(layout); layout != "" {
			layouts = append(layouts, layout)
		}
	}
	if len(layouts) == 0 {
		layouts = append(layouts, DefaultDateLayouts...)
	}
	c.Input.DateLayouts = layouts
}

func (c *Config) normalizeAnalysis() {
	if c.Analysis.RowCap == 0 {
		c.Analysis.RowCap = defaultRowCap
	}
	names := make([]string, 0, len(c.Analysis.Analyzers))
	seen := make(map[string]struct{}, len(c.Analysis.Analyzers))
	for _, name := range c.Analysis.Analyzers {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		names = append(names, normalized)
	}
	c.Analysis.Analyzers = names
}

func (c *Config) normalizeFeedback() {
	c.Feedback.Provider = strings.ToLower(strings.TrimSpace(c.Feedback.Provider))
	if c.Feedback.Provider == "" {
		c.Feedback.Provider = defaultProvider
	}
	c.Feedback.Model = strings.TrimSpace(c.Feedback.Model)
	if c.Feedback.Model == "" {
		c.Feedback.Model = DefaultModel(c.Feedback.Provider)
	}
	c.Feedback.Region = strings.TrimSpace(c.Feedback.Region)
	if c.Feedback.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok && strings.TrimSpace(value) != "" {
			c.Feedback.Region = strings.TrimSpace(value)
		} else {
			c.Feedback.Region = defaultRegion
		}
	}
	c.Feedback.APIKey = strings.TrimSpace(c.Feedback.APIKey)
	if c.Feedback.APIKey == "" {
		switch c.Feedback.Provider {
		case ProviderAnthropic:
			c.Feedback.APIKey = lookupEnvTrimmed("ANTHROPIC_API_KEY")
		case ProviderOpenRouter:
			c.Feedback.APIKey = lookupEnvTrimmed("OPENROUTER_API_KEY")
		}
	}
	c.Feedback.BaseURL = strings.TrimSpace(c.Feedback.BaseURL)
	if c.Feedback.BaseURL == "" && c.Feedback.Provider == ProviderOpenRouter {
		c.Feedback.BaseURL = defaultOpenRouterURL
	}
	if c.Feedback.MaxTokens == 0 {
		c.Feedback.MaxTokens = defaultMaxTokens
	}
	if c.Feedback.TimeoutSeconds == 0 {
		c.Feedback.TimeoutSeconds = defaultTimeoutSeconds
	}
	c.Feedback.Language = strings.ToLower(strings.TrimSpace(c.Feedback.Language))
	if c.Feedback.Language == "" {
		c.Feedback.Language = defaultLanguage
	}
}

func (c *Config) normalizeReport() {
	c.Report.Format = strings.ToLower(strings.TrimSpace(c.Report.Format))
	switch c.Report.Format {
	case "", "md":
		c.Report.Format = defaultReportFormat
	case "htm":
		c.Report.Format = "html"
	}
	c.Report.Title = strings.TrimSpace(c.Report.Title)
	if c.Report.Title == "" {
		c.Report.Title = defaultReportTitle
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value := lookupEnvTrimmed("TCCRETRO_LOG_LEVEL"); value != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func lookupEnvTrimmed(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
