package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tccretro/internal/analyzer"
	"tccretro/internal/chart"
	"tccretro/internal/config"
	"tccretro/internal/feedback"
	"tccretro/internal/history"
	"tccretro/internal/logging"
	"tccretro/internal/output"
	"tccretro/internal/pipeline"
	"tccretro/internal/prompt"
	"tccretro/internal/records"
	"tccretro/internal/report"
)

type analyzeOptions struct {
	csvPath   string
	dates     rangeFlags
	noAI      bool
	outputDir string
	format    string
	noCharts  bool
	noHistory bool
	json      bool
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a timeline export and write a retrospective report",
		Long: `Analyze reads a TaskChute Cloud timeline CSV (UTF-8 or Shift_JIS), runs the
configured analyzers, requests narrative feedback unless --no-ai is set, and
writes the report to the output directory. Use --csv - to read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runAnalyze(cmd, ctx.logger(cmd), *cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "Timeline CSV export (- for stdin)")
	cmd.Flags().StringVar(&opts.dates.date, "date", "", "Analyze a single date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.dates.start, "start", "", "Range start date (requires --end)")
	cmd.Flags().StringVar(&opts.dates.end, "end", "", "Range end date (requires --start)")
	cmd.Flags().BoolVar(&opts.noAI, "no-ai", false, "Skip narrative feedback")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "Override paths.output_dir")
	cmd.Flags().StringVar(&opts.format, "format", "", "Report format: markdown or html")
	cmd.Flags().BoolVar(&opts.noCharts, "no-charts", false, "Do not render SVG charts")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record the run in history")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the run summary as JSON")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

type analyzeSummary struct {
	RunID          string   `json:"run_id"`
	Report         string   `json:"report"`
	Range          string   `json:"range"`
	Records        int      `json:"records"`
	Analyzers      []string `json:"analyzers"`
	Failed         []string `json:"failed_analyzers,omitempty"`
	Feedback       string   `json:"feedback"`
	FeedbackReason string   `json:"feedback_reason,omitempty"`
	Truncated      bool     `json:"truncated"`
	Warnings       []string `json:"warnings,omitempty"`
}

func runAnalyze(cmd *cobra.Command, logger *slog.Logger, cfg config.Config, opts analyzeOptions) error {
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	if dir := strings.TrimSpace(opts.outputDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("resolve output dir: %w", err)
		}
		cfg.Paths.OutputDir = expanded
	}
	if format := strings.TrimSpace(opts.format); format != "" {
		cfg.Report.Format = format
	}
	if opts.noCharts {
		cfg.Analysis.Charts = false
	}

	rg, err := opts.dates.resolve(cfg.Input.DateLayouts)
	if err != nil {
		return err
	}
	ds, err := loadDataset(cmd, opts.csvPath, cfg.Input)
	if err != nil {
		return err
	}
	logger.Info("timeline loaded",
		logging.String(logging.FieldEventType, "input_loaded"),
		logging.String("source", ds.Source),
		logging.Int("records", len(ds.Records)),
		logging.Int("skipped_rows", ds.SkippedRows),
	)

	p, closeFn, err := buildPipeline(runCtx, cfg, logger, !opts.noAI, !opts.noHistory)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := p.Run(runCtx, pipeline.Input{
		Records:      ds.Records,
		Range:        rg,
		Source:       ds.Source,
		SkipFeedback: opts.noAI,
	})
	if err != nil {
		return err
	}

	summary := summarize(res)
	if opts.json {
		return writeJSON(cmd, summary)
	}
	printSummary(cmd, summary)
	return nil
}

func loadDataset(cmd *cobra.Command, path string, input config.Input) (*records.Dataset, error) {
	opts := records.LoadOptions{Encoding: input.Encoding, DateLayouts: input.DateLayouts}
	path = strings.TrimSpace(path)
	if path == "-" {
		ds, err := records.Load(cmd.InOrStdin(), opts)
		if err != nil {
			return nil, err
		}
		ds.Source = "stdin"
		return ds, nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve csv path: %w", err)
	}
	return records.LoadFile(expanded, opts)
}

// buildPipeline wires the configured collaborators. The returned function
// releases the history database.
func buildPipeline(ctx context.Context, cfg config.Config, logger *slog.Logger, withFeedback, withHistory bool) (*pipeline.Pipeline, func(), error) {
	analyzers, err := analyzer.Builtins(cfg.Analysis.Analyzers)
	if err != nil {
		return nil, nil, err
	}
	regOpts := []analyzer.RegistryOption{analyzer.WithLogger(logging.NewComponentLogger(logger, "analyzer"))}
	if cfg.Analysis.Parallel {
		regOpts = append(regOpts, analyzer.WithParallel(0))
	}
	registry, err := analyzer.NewRegistry(analyzers, regOpts...)
	if err != nil {
		return nil, nil, err
	}

	writer, err := output.NewWriter(cfg.Paths.OutputDir, cfg.Report.Format, logging.NewComponentLogger(logger, "output"))
	if err != nil {
		return nil, nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logging.NewComponentLogger(logger, "pipeline")),
		pipeline.WithAssembler(prompt.NewAssembler(cfg.Analysis.RowCap, logging.NewComponentLogger(logger, "prompt"))),
		pipeline.WithWriter(writer),
		pipeline.WithTitle(cfg.Report.Title),
	}
	if cfg.Analysis.Charts {
		charts := chart.NewRenderer(
			cfg.ChartsDir(),
			filepath.ToSlash(cfg.Paths.ChartsSubdir),
			logging.NewComponentLogger(logger, "chart"),
		)
		opts = append(opts, pipeline.WithCharts(charts))
	}
	if withFeedback && cfg.Feedback.Enabled {
		opts = append(opts, pipeline.WithGenerator(buildGenerator(ctx, cfg.Feedback, logger)))
	}

	closeFn := func() {}
	if withHistory {
		store, err := history.Open(ctx, &cfg)
		if err != nil {
			logging.WarnWithContext(logger, "run history unavailable", "history_failed",
				logging.String(logging.FieldImpact, "run will not appear in `tccretro history`"),
				logging.Error(err),
			)
		} else {
			opts = append(opts, pipeline.WithRecorder(store))
			closeFn = func() { _ = store.Close() }
		}
	}

	p, err := pipeline.New(registry, opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return p, closeFn, nil
}

// buildGenerator never fails: construction errors become an Unavailable
// generator so the report still renders with a feedback marker.
func buildGenerator(ctx context.Context, cfg config.Feedback, logger *slog.Logger) pipeline.Generator {
	gen, err := feedback.New(ctx, cfg, feedback.WithLogger(logging.NewComponentLogger(logger, "feedback")))
	if err != nil {
		var authErr *feedback.AuthError
		hint := "check feedback settings in the config file"
		if errors.As(err, &authErr) {
			hint = "set credentials for the provider or pass --no-ai"
		}
		logging.WarnWithContext(logger, "feedback generator unavailable", "feedback_unavailable",
			logging.String("provider", cfg.Provider),
			logging.String(logging.FieldErrorHint, hint),
			logging.Error(err),
		)
		return pipeline.Unavailable(cfg.Provider, err)
	}
	return gen
}

func summarize(res *pipeline.Result) analyzeSummary {
	rep := res.Report
	s := analyzeSummary{
		RunID:          res.RunID,
		Report:         res.Path,
		Range:          res.Range.String(),
		Records:        rep.Metadata.Records,
		Feedback:       string(rep.Feedback),
		FeedbackReason: rep.FeedbackReason,
		Truncated:      res.Payload.Truncated,
	}
	for _, r := range rep.Results {
		s.Analyzers = append(s.Analyzers, r.Name)
	}
	for _, f := range rep.Failures {
		s.Failed = append(s.Failed, f.Name+": "+f.Reason)
	}
	for _, w := range rep.Warnings {
		s.Warnings = append(s.Warnings, fmt.Sprintf("[%s] %s", w.Kind, w.Message))
	}
	return s
}

func printSummary(cmd *cobra.Command, s analyzeSummary) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	writeLines(out, renderSectionHeader("Retrospective", colorize)...)
	writeLines(out,
		renderStatusLine("Report", statusOK, s.Report, colorize),
		renderStatusLine("Period", statusInfo, s.Range, colorize),
		renderStatusLine("Records", statusInfo, fmt.Sprintf("%d", s.Records), colorize),
		renderStatusLine("Analyzers", statusOK, strings.Join(s.Analyzers, ", "), colorize),
	)
	for _, f := range s.Failed {
		writeLines(out, renderStatusLine("Analyzer", statusWarn, f, colorize))
	}

	switch report.FeedbackStatus(s.Feedback) {
	case report.FeedbackApplied:
		writeLines(out, renderStatusLine("Feedback", statusOK, "included", colorize))
	case report.FeedbackUnavailable:
		writeLines(out, renderStatusLine("Feedback", statusError, "unavailable: "+s.FeedbackReason, colorize))
	default:
		writeLines(out, renderStatusLine("Feedback", statusInfo, "skipped", colorize))
	}
	for _, w := range s.Warnings {
		writeLines(out, renderStatusLine("Warning", statusWarn, w, colorize))
	}
}

var _ pipeline.Generator = (*feedback.Generator)(nil)
