package report

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"tccretro/internal/analyzer"
	"tccretro/internal/calendar"
	"tccretro/internal/services"
)

type entry struct {
	name   string
	result analyzer.Result
	err    error
}

// Compositor accumulates report content stage by stage.
type Compositor struct {
	state    State
	meta     Metadata
	days     []calendar.Day
	entries  []entry
	warnings []Warning

	feedback       FeedbackStatus
	feedbackText   string
	feedbackReason string
}

// NewCompositor starts an empty report.
func NewCompositor(meta Metadata, days []calendar.Day) *Compositor {
	if strings.TrimSpace(meta.Title) == "" {
		meta.Title = DefaultTitle
	}
	return &Compositor{
		state: StateEmpty,
		meta:  meta,
		days:  slices.Clone(days),
	}
}

// State returns the current lifecycle state.
func (c *Compositor) State() State { return c.state }

// Warn records a warning. Warnings may be added until the report is
// finalized.
func (c *Compositor) Warn(w Warning) error {
	if c.state == StateFinalized {
		return transitionError("warn", c.state)
	}
	w.Message = strings.TrimSpace(w.Message)
	if w.Message == "" {
		return errors.New("report: warning message is empty")
	}
	c.warnings = append(c.warnings, w)
	return nil
}

// ApplyAnalyzers records every registry outcome in the given order. Failed
// outcomes become "analysis unavailable" sections; parse errors become data
// quality warnings.
func (c *Compositor) ApplyAnalyzers(outcomes []analyzer.Outcome) error {
	if c.state != StateEmpty {
		return transitionError("apply analyzers", c.state)
	}
	c.entries = make([]entry, 0, len(outcomes))
	for _, o := range outcomes {
		res := o.Result
		res.Categories = slices.Clone(res.Categories)
		c.entries = append(c.entries, entry{name: o.Name, result: res, err: o.Err})
		if o.Err == nil && o.Result.ParseErrors > 0 {
			c.warnings = append(c.warnings, Warning{
				Kind:    DataQualityWarning,
				Source:  o.Name,
				Message: fmt.Sprintf("%d duration cells could not be parsed and were counted as zero", o.Result.ParseErrors),
			})
		}
	}
	c.state = StateAnalyzersApplied
	return nil
}

// ApplyFeedback attaches narrative text.
func (c *Compositor) ApplyFeedback(text string) error {
	if c.state != StateAnalyzersApplied {
		return transitionError("apply feedback", c.state)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyFeedback
	}
	c.feedbackText = text
	c.feedback = FeedbackApplied
	c.state = StateFeedbackApplied
	return nil
}

// SkipFeedback records that feedback was not requested.
func (c *Compositor) SkipFeedback() error {
	if c.state != StateAnalyzersApplied {
		return transitionError("skip feedback", c.state)
	}
	c.feedback = FeedbackSkipped
	c.state = StateFeedbackSkipped
	return nil
}

// FeedbackFailed records that feedback was requested but could not be
// produced. The section carries the reason and a deterministic fallback
// summary.
func (c *Compositor) FeedbackFailed(cause error) error {
	if c.state != StateAnalyzersApplied {
		return transitionError("feedback failed", c.state)
	}
	reason := services.Reason(cause)
	if reason == "" {
		reason = "unknown error"
	}
	c.feedback = FeedbackUnavailable
	c.feedbackReason = reason
	c.state = StateFeedbackSkipped
	return nil
}

// Finalize freezes the report. Further operations fail with
// ErrInvalidTransition.
func (c *Compositor) Finalize() (Report, error) {
	if c.state != StateFeedbackApplied && c.state != StateFeedbackSkipped {
		return Report{}, transitionError("finalize", c.state)
	}
	r := Report{
		Metadata:       c.meta,
		Days:           slices.Clone(c.days),
		Warnings:       slices.Clone(c.warnings),
		Feedback:       c.feedback,
		FeedbackReason: c.feedbackReason,
	}
	for _, e := range c.entries {
		if e.err != nil {
			r.Failures = append(r.Failures, AnalyzerFailure{Name: e.name, Reason: failureReason(e.err)})
			continue
		}
		res := e.result
		res.Categories = slices.Clone(res.Categories)
		r.Results = append(r.Results, res)
	}

	r.Sections = make([]Section, 0, len(c.entries)+2)
	r.Sections = append(r.Sections, Section{
		Kind:  SectionHeader,
		Name:  string(SectionHeader),
		Title: c.meta.Title,
		Body:  renderHeader(r),
	})
	for _, e := range c.entries {
		if e.err != nil {
			r.Sections = append(r.Sections, Section{
				Kind:  SectionAnalysisUnavailable,
				Name:  e.name,
				Title: e.name,
				Body:  fmt.Sprintf("> %s: %s\n", MarkerAnalysisUnavailable, failureReason(e.err)),
			})
			continue
		}
		title := e.result.Title
		if title == "" {
			title = e.name
		}
		r.Sections = append(r.Sections, Section{
			Kind:  SectionAnalysis,
			Name:  e.name,
			Title: title,
			Body:  renderAnalysis(e.result),
		})
	}
	r.Sections = append(r.Sections, Section{
		Kind:  SectionFeedback,
		Name:  string(SectionFeedback),
		Title: "Feedback",
		Body:  c.renderFeedback(r.Results),
	})
	c.state = StateFinalized
	return r, nil
}

func (c *Compositor) renderFeedback(results []analyzer.Result) string {
	switch c.feedback {
	case FeedbackApplied:
		return c.feedbackText + "\n"
	case FeedbackUnavailable:
		return fmt.Sprintf("> %s: %s\n\n%s", MarkerFeedbackUnavailable, c.feedbackReason, FallbackSummary(results))
	default:
		return "> " + MarkerFeedbackSkipped + "\n"
	}
}

func failureReason(err error) string {
	var ae *analyzer.AnalysisError
	if errors.As(err, &ae) && ae.Reason != "" {
		return ae.Reason
	}
	return err.Error()
}
