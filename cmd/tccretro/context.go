package main

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tccretro/internal/config"
	"tccretro/internal/logging"
)

type commandContext struct {
	configFlag *string
	envFlag    *string

	envOnce sync.Once
	envErr  error

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, envFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		envFlag:    envFlag,
	}
}

// loadEnv reads the dotenv file once. Variables already present in the
// environment win.
func (c *commandContext) loadEnv() {
	c.envOnce.Do(func() {
		if c.envFlag == nil {
			return
		}
		path := strings.TrimSpace(*c.envFlag)
		if path == "" {
			return
		}
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.envErr = err
		}
	})
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// logger builds a logger that writes console output to the command's stderr.
func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	cfg, _ := c.ensureConfig()
	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		fallback, _ := logging.New(logging.Options{Level: "info", Writer: cmd.ErrOrStderr()})
		fallback.Warn("logger setup failed; using console only", logging.Error(err))
		logger = fallback
	}
	if c.envErr != nil {
		logger.Warn("dotenv file could not be parsed", logging.Error(c.envErr))
	}
	if cfg != nil {
		if _, err := logging.PruneLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, time.Now()); err != nil {
			logger.Debug("log retention skipped", logging.Error(err))
		}
	}
	return logger
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func writeLines(w io.Writer, lines ...string) {
	for _, line := range lines {
		_, _ = io.WriteString(w, line+"\n")
	}
}
