package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tccretro/internal/calendar"
	"tccretro/internal/history"
)

type historyEntry struct {
	RunID          string `json:"run_id"`
	CreatedAt      string `json:"created_at"`
	Range          string `json:"range"`
	Records        int    `json:"records"`
	SampleRows     int    `json:"sample_rows"`
	Truncated      bool   `json:"truncated"`
	AnalyzersOK    int    `json:"analyzers_ok"`
	AnalyzersFail  int    `json:"analyzers_failed"`
	Warnings       int    `json:"warnings"`
	Feedback       string `json:"feedback"`
	FeedbackReason string `json:"feedback_reason,omitempty"`
	Provider       string `json:"provider,omitempty"`
	Report         string `json:"report"`
	DurationMS     int64  `json:"duration_ms"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect previous runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func openHistory(cmd *cobra.Command, ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				entries := make([]historyEntry, 0, len(runs))
				for _, run := range runs {
					entries = append(entries, toHistoryEntry(run))
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortRunID(run.ID),
					run.CreatedAt.Local().Format("2006-01-02 15:04"),
					runRange(run),
					fmt.Sprintf("%d", run.Records),
					fmt.Sprintf("%d/%d", run.AnalyzersOK, run.AnalyzersOK+run.AnalyzersFailed),
					run.FeedbackStatus,
					yesNo(run.Truncated),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Created", "Period", "Records", "Analyzers", "Feedback", "Truncated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				shouldColorize(out),
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if errors.Is(err, history.ErrNotFound) {
				return fmt.Errorf("run %s not found", args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writeLines(out,
				fmt.Sprintf("Run:        %s", run.ID),
				fmt.Sprintf("Created:    %s", run.CreatedAt.Local().Format(time.RFC3339)),
				fmt.Sprintf("Period:     %s", runRange(run)),
				fmt.Sprintf("Source:     %s", run.Source),
				fmt.Sprintf("Records:    %d (sampled %d, truncated %s)", run.Records, run.SampleRows, yesNo(run.Truncated)),
				fmt.Sprintf("Analyzers:  %d ok, %d failed", run.AnalyzersOK, run.AnalyzersFailed),
				fmt.Sprintf("Warnings:   %d", run.Warnings),
				fmt.Sprintf("Feedback:   %s", feedbackLabel(run)),
				fmt.Sprintf("Report:     %s", run.ReportPath),
				fmt.Sprintf("Duration:   %s", run.Duration.Round(time.Millisecond)),
			)
			return nil
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 0 {
				return errors.New("--keep must not be negative")
			}
			store, err := openHistory(cmd, ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 50, "Number of recent runs to keep")
	return cmd
}

func toHistoryEntry(run history.Run) historyEntry {
	return historyEntry{
		RunID:          run.ID,
		CreatedAt:      run.CreatedAt.UTC().Format(time.RFC3339),
		Range:          runRange(run),
		Records:        run.Records,
		SampleRows:     run.SampleRows,
		Truncated:      run.Truncated,
		AnalyzersOK:    run.AnalyzersOK,
		AnalyzersFail:  run.AnalyzersFailed,
		Warnings:       run.Warnings,
		Feedback:       run.FeedbackStatus,
		FeedbackReason: run.FeedbackReason,
		Provider:       run.Provider,
		Report:         run.ReportPath,
		DurationMS:     run.Duration.Milliseconds(),
	}
}

func runRange(run history.Run) string {
	return calendar.Range{Start: run.RangeStart, End: run.RangeEnd}.String()
}

func feedbackLabel(run history.Run) string {
	label := run.FeedbackStatus
	if label == "" {
		label = "skipped"
	}
	if run.Provider != "" {
		label += " (" + run.Provider + ")"
	}
	if run.FeedbackReason != "" {
		label += ": " + run.FeedbackReason
	}
	return label
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
