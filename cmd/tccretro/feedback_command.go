package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tccretro/internal/feedback"
	"tccretro/internal/logging"
	"tccretro/internal/services"
)

func newFeedbackCommand(ctx *commandContext) *cobra.Command {
	feedbackCmd := &cobra.Command{
		Use:   "feedback",
		Short: "Narrative feedback provider utilities",
	}
	feedbackCmd.AddCommand(newFeedbackCheckCommand(ctx))
	return feedbackCmd
}

func newFeedbackCheckCommand(ctx *commandContext) *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify credentials and connectivity for the configured provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fb := cfg.Feedback
			if p := strings.TrimSpace(provider); p != "" {
				fb.Provider = strings.ToLower(p)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			writeLines(out, renderSectionHeader("Feedback", colorize)...)
			if !cfg.Feedback.Enabled {
				writeLines(out, renderStatusLine("Enabled", statusWarn, "no (analyze runs will skip feedback)", colorize))
			}

			logger := logging.NewComponentLogger(ctx.logger(cmd), "feedback")
			gen, err := feedback.New(cmd.Context(), fb, feedback.WithLogger(logger))
			if err != nil {
				writeLines(out, renderStatusLine("Provider", statusError, fb.Provider+": "+checkReason(err), colorize))
				return fmt.Errorf("feedback check: %w", err)
			}
			writeLines(out, renderStatusLine("Provider", statusInfo, gen.Provider(), colorize))
			if err := gen.Check(cmd.Context()); err != nil {
				writeLines(out, renderStatusLine("Connection", statusError, checkReason(err), colorize))
				return fmt.Errorf("feedback check: %w", err)
			}
			writeLines(out, renderStatusLine("Connection", statusOK, "ready", colorize))
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Override feedback.provider for this check")
	return cmd
}

func checkReason(err error) string {
	var authErr *feedback.AuthError
	if errors.As(err, &authErr) {
		return "authentication failed (check credentials)"
	}
	return services.Reason(err)
}
