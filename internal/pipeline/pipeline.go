package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tccretro/internal/analyzer"
	"tccretro/internal/calendar"
	"tccretro/internal/history"
	"tccretro/internal/logging"
	"tccretro/internal/prompt"
	"tccretro/internal/records"
	"tccretro/internal/report"
	"tccretro/internal/services"
)

// Stage names used in logs and error messages.
const (
	StageCalendar = "calendar"
	StageAnalyze  = "analyze"
	StageCharts   = "charts"
	StagePrompt   = "prompt"
	StageFeedback = "feedback"
	StageCompose  = "compose"
	StageWrite    = "write"
	StageHistory  = "history"
)

// Generator produces narrative feedback.
type Generator interface {
	Provider() string
	Generate(ctx context.Context, payload prompt.Payload) (string, error)
}

// ChartRenderer renders one result and returns an opaque reference.
type ChartRenderer interface {
	Render(ctx context.Context, res analyzer.Result) (string, error)
}

// ReportWriter persists a finalized report and returns its location.
type ReportWriter interface {
	Write(ctx context.Context, r report.Report) (string, error)
}

// Recorder stores run summaries.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Input is one run's data.
type Input struct {
	Records []records.Record
	// Range restricts the run to an explicit period. Records outside it are
	// ignored and reported as a data quality warning.
	Range  *calendar.Range
	Source string
	// SkipFeedback bypasses the feedback stage even when a generator is set.
	SkipFeedback bool
}

// Result describes a completed run.
type Result struct {
	RunID    string
	Range    calendar.Range
	Report   report.Report
	Outcomes []analyzer.Outcome
	Payload  prompt.Payload
	Path     string
	Duration time.Duration
}

// Pipeline holds the collaborators of a run. It keeps no per-run state and
// may be reused.
type Pipeline struct {
	registry  *analyzer.Registry
	resolver  *calendar.Resolver
	assembler *prompt.Assembler
	generator Generator
	charts    ChartRenderer
	writer    ReportWriter
	recorder  Recorder
	clock     calendar.Clock
	title     string
	newID     func() string
	logger    *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithGenerator enables the feedback stage.
func WithGenerator(g Generator) Option { return func(p *Pipeline) { p.generator = g } }

// WithCharts enables chart rendering.
func WithCharts(c ChartRenderer) Option { return func(p *Pipeline) { p.charts = c } }

// WithWriter persists finalized reports.
func WithWriter(w ReportWriter) Option { return func(p *Pipeline) { p.writer = w } }

// WithRecorder records a summary of each written report.
func WithRecorder(r Recorder) Option { return func(p *Pipeline) { p.recorder = r } }

// WithResolver overrides the calendar resolver.
func WithResolver(r *calendar.Resolver) Option { return func(p *Pipeline) { p.resolver = r } }

// WithAssembler overrides the prompt assembler.
func WithAssembler(a *prompt.Assembler) Option { return func(p *Pipeline) { p.assembler = a } }

// WithClock sets the time source for report timestamps.
func WithClock(c calendar.Clock) Option { return func(p *Pipeline) { p.clock = c } }

// WithTitle sets the report title.
func WithTitle(title string) Option { return func(p *Pipeline) { p.title = title } }

// WithRunIDFunc overrides run id generation.
func WithRunIDFunc(fn func() string) Option { return func(p *Pipeline) { p.newID = fn } }

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New builds a pipeline around registry.
func New(registry *analyzer.Registry, opts ...Option) (*Pipeline, error) {
	if registry == nil {
		return nil, errors.New("pipeline: analyzer registry is required")
	}
	p := &Pipeline{
		registry: registry,
		clock:    calendar.SystemClock{},
		newID:    uuid.NewString,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.resolver == nil {
		p.resolver = calendar.NewResolver(calendar.WithClock(p.clock))
	}
	if p.assembler == nil {
		p.assembler = prompt.NewAssembler(prompt.DefaultRowCap, p.logger)
	}
	return p, nil
}

// Unavailable returns a Generator whose calls fail with err. It lets callers
// surface generator construction failures, such as missing credentials, as a
// feedback marker in an otherwise complete report.
func Unavailable(provider string, err error) Generator {
	return unavailable{provider: provider, err: err}
}

type unavailable struct {
	provider string
	err      error
}

func (u unavailable) Provider() string { return u.provider }

func (u unavailable) Generate(context.Context, prompt.Payload) (string, error) { return "", u.err }

// Run executes every stage for in.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	started := p.clock.Now()
	runID := p.newID()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)
	res := &Result{RunID: runID}

	// calendar
	if err := checkpoint(ctx, StageCalendar); err != nil {
		return nil, err
	}
	rs, outside := filterRange(in.Records, in.Range)
	rg, days := p.resolver.Resolve(in.Range, records.Dates(rs))
	res.Range = rg
	p.stageLogger(ctx, StageCalendar).Info("calendar resolved",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("range", rg.String()),
		logging.Int("days", len(days)),
		logging.Int("records", len(rs)),
	)

	comp := report.NewCompositor(report.Metadata{
		Title:       p.title,
		Range:       rg,
		GeneratedAt: started,
		Source:      in.Source,
		RunID:       runID,
		Records:     len(rs),
	}, days)
	if outside > 0 {
		msg := fmt.Sprintf("%d records outside %s were ignored", outside, rg)
		_ = comp.Warn(report.Warning{Kind: report.DataQualityWarning, Source: "input", Message: msg})
		logging.WarnWithContext(p.stageLogger(ctx, StageCalendar), "records outside range ignored", "data_quality",
			logging.Int("ignored", outside),
			logging.String(logging.FieldErrorHint, "widen --start/--end or export a matching period"),
		)
	}

	// analyze
	if err := checkpoint(ctx, StageAnalyze); err != nil {
		return nil, err
	}
	outcomes, err := p.registry.Run(services.WithStage(ctx, StageAnalyze), rs)
	if err != nil {
		return nil, services.Wrap(services.ErrAnalysis, StageAnalyze, "run registry", "analyzer run aborted", err)
	}

	// charts
	if p.charts != nil {
		if err := checkpoint(ctx, StageCharts); err != nil {
			return nil, err
		}
		p.renderCharts(services.WithStage(ctx, StageCharts), outcomes)
	}
	res.Outcomes = outcomes
	if err := comp.ApplyAnalyzers(outcomes); err != nil {
		return nil, err
	}

	// prompt + feedback
	if err := checkpoint(ctx, StagePrompt); err != nil {
		return nil, err
	}
	payload, err := p.assembler.Assemble(services.WithStage(ctx, StagePrompt), rs, days, successful(outcomes))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, StagePrompt, "assemble", "build prompt payload", err)
	}
	res.Payload = payload
	if payload.Truncated {
		_ = comp.Warn(report.Warning{
			Kind:    report.TruncationWarning,
			Source:  StagePrompt,
			Message: fmt.Sprintf("feedback sample holds the first %d of %d records", payload.SampleSize(), payload.TotalRecords),
		})
	}

	if p.generator == nil || in.SkipFeedback {
		p.stageLogger(ctx, StageFeedback).Info("feedback skipped",
			logging.String(logging.FieldEventType, "feedback_skipped"))
		if err := comp.SkipFeedback(); err != nil {
			return nil, err
		}
	} else {
		if err := checkpoint(ctx, StageFeedback); err != nil {
			return nil, err
		}
		text, genErr := p.generator.Generate(services.WithStage(ctx, StageFeedback), payload)
		if genErr == nil {
			genErr = comp.ApplyFeedback(text)
			if genErr != nil && !errors.Is(genErr, report.ErrEmptyFeedback) {
				return nil, genErr
			}
		}
		switch {
		case genErr == nil:
		case ctx.Err() != nil:
			return nil, fmt.Errorf("%s: %w", StageFeedback, ctx.Err())
		default:
			logging.WarnWithContext(p.stageLogger(ctx, StageFeedback), "feedback unavailable", "feedback_unavailable",
				logging.String("provider", p.generator.Provider()),
				logging.String("reason", services.Reason(genErr)),
				logging.String(logging.FieldErrorHint, "run `tccretro feedback check` to verify credentials"),
				logging.String(logging.FieldImpact, "report contains a basic summary instead of feedback"),
				logging.Error(genErr),
			)
			if err := comp.FeedbackFailed(genErr); err != nil {
				return nil, err
			}
		}
	}

	// compose
	rep, err := comp.Finalize()
	if err != nil {
		return nil, err
	}
	res.Report = rep

	// write
	if p.writer != nil {
		if err := checkpoint(ctx, StageWrite); err != nil {
			return nil, err
		}
		path, err := p.writer.Write(services.WithStage(ctx, StageWrite), rep)
		if err != nil {
			return nil, services.Wrap(services.ErrService, StageWrite, "write report", "report could not be saved", err)
		}
		res.Path = path
	}
	res.Duration = p.clock.Now().Sub(started)

	if p.recorder != nil && res.Path != "" {
		p.record(services.WithStage(ctx, StageHistory), res)
	}

	logger.Info("report finalized",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("path", res.Path),
		logging.Int("sections", len(rep.Sections)),
		logging.Int("warnings", len(rep.Warnings)),
		logging.String("feedback", string(rep.Feedback)),
		logging.Duration("elapsed", res.Duration),
	)
	return res, nil
}

func (p *Pipeline) stageLogger(ctx context.Context, stage string) *slog.Logger {
	return logging.WithContext(services.WithStage(ctx, stage), p.logger)
}

func (p *Pipeline) renderCharts(ctx context.Context, outcomes []analyzer.Outcome) {
	logger := logging.WithContext(ctx, p.logger)
	for i := range outcomes {
		if !outcomes[i].OK() {
			continue
		}
		ref, err := p.charts.Render(ctx, outcomes[i].Result)
		if err != nil {
			logging.WarnWithContext(logger, "chart rendering failed", "chart_failed",
				logging.String(logging.FieldAnalyzer, outcomes[i].Name),
				logging.String(logging.FieldImpact, "section rendered without a chart"),
				logging.Error(err),
			)
			continue
		}
		outcomes[i].Result.Chart = ref
	}
}

func (p *Pipeline) record(ctx context.Context, res *Result) {
	rep := res.Report
	run := history.Run{
		ID:              res.RunID,
		CreatedAt:       rep.Metadata.GeneratedAt,
		RangeStart:      res.Range.Start,
		RangeEnd:        res.Range.End,
		Source:          rep.Metadata.Source,
		Records:         rep.Metadata.Records,
		SampleRows:      res.Payload.SampleSize(),
		Truncated:       res.Payload.Truncated,
		AnalyzersOK:     len(rep.Results),
		AnalyzersFailed: len(rep.Failures),
		Warnings:        len(rep.Warnings),
		FeedbackStatus:  string(rep.Feedback),
		FeedbackReason:  rep.FeedbackReason,
		ReportPath:      res.Path,
		Duration:        res.Duration,
	}
	if p.generator != nil && rep.Feedback != report.FeedbackSkipped {
		run.Provider = p.generator.Provider()
	}
	if err := p.recorder.Record(ctx, run); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "run history not recorded", "history_failed",
			logging.String(logging.FieldImpact, "report written but missing from `tccretro history`"),
			logging.Error(err),
		)
	}
}

func checkpoint(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", stage, err)
	}
	return nil
}

func successful(outcomes []analyzer.Outcome) []analyzer.Result {
	out := make([]analyzer.Result, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			out = append(out, o.Result)
		}
	}
	return out
}

// filterRange drops dated records outside rg. Undated records are kept.
func filterRange(rs []records.Record, rg *calendar.Range) ([]records.Record, int) {
	if rg == nil {
		return rs, 0
	}
	kept := make([]records.Record, 0, len(rs))
	for _, r := range rs {
		if !r.Date.IsZero() && (r.Date.Before(rg.Start) || r.Date.After(rg.End)) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, len(rs) - len(kept)
}
