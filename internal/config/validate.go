package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownAnalyzers = map[string]struct{}{
	"project": {},
	"mode":    {},
	"routine": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateInput(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateFeedback(); err != nil {
		return err
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateInput() error {
	switch c.Input.Encoding {
	case "auto", "utf-8", "shift_jis":
		return nil
	default:
		return fmt.Errorf("input.encoding: unsupported value %q (want auto, utf-8, or shift_jis)", c.Input.Encoding)
	}
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.RowCap < 0 {
		return errors.New("analysis.row_cap must be positive")
	}
	if len(c.Analysis.Analyzers) == 0 {
		return errors.New("analysis.analyzers must list at least one analyzer")
	}
	for _, name := range c.Analysis.Analyzers {
		if _, ok := knownAnalyzers[name]; !ok {
			return fmt.Errorf("analysis.analyzers: unknown analyzer %q", name)
		}
	}
	return nil
}

func (c *Config) validateFeedback() error {
	switch c.Feedback.Provider {
	case ProviderBedrock, ProviderAnthropic, ProviderOpenRouter:
	default:
		return fmt.Errorf("feedback.provider: unsupported value %q", c.Feedback.Provider)
	}
	if err := ensurePositiveMap(map[string]int{
		"feedback.max_tokens":      c.Feedback.MaxTokens,
		"feedback.timeout_seconds": c.Feedback.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Feedback.Temperature < 0 || c.Feedback.Temperature > 1 {
		return errors.New("feedback.temperature must be between 0 and 1")
	}
	if c.Feedback.Provider == ProviderOpenRouter && strings.TrimSpace(c.Feedback.BaseURL) == "" {
		return errors.New("feedback.base_url must be set when feedback.provider is openrouter")
	}
	return nil
}

func (c *Config) validateReport() error {
	switch c.Report.Format {
	case "markdown", "html":
		return nil
	default:
		return fmt.Errorf("report.format: unsupported value %q (want markdown or html)", c.Report.Format)
	}
}

func (c *Config) validateLogging() error {
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must not be negative")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
