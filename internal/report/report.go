// Package report composes analyzer results, calendar context, and narrative
// feedback into one ordered document.
//
// The Compositor is a one-way state machine:
//
//	Empty -> AnalyzersApplied -> (FeedbackApplied | FeedbackSkipped) -> Finalized
//
// Section order is fixed: header, one section per analyzer in registry order,
// then the feedback section. A failed analyzer or feedback stage is rendered as
// a marker in its slot, so every run that reaches Finalize yields a complete
// document.
package report

import (
	"strings"
	"time"

	"tccretro/internal/analyzer"
	"tccretro/internal/calendar"
)

// DefaultTitle is used when Metadata.Title is empty.
const DefaultTitle = "TaskChute Cloud Retrospective"

// Markers rendered in place of missing content.
const (
	MarkerFeedbackSkipped     = "feedback skipped"
	MarkerFeedbackUnavailable = "feedback unavailable"
	MarkerAnalysisUnavailable = "analysis unavailable"
)

// WarningKind classifies non-fatal conditions surfaced in the header.
type WarningKind string

const (
	TruncationWarning  WarningKind = "truncation"
	DataQualityWarning WarningKind = "data_quality"
)

// Warning is a non-fatal condition that must be visible in the report.
type Warning struct {
	Kind    WarningKind
	Source  string
	Message string
}

// FeedbackStatus records how the feedback stage resolved.
type FeedbackStatus string

const (
	FeedbackPending     FeedbackStatus = ""
	FeedbackApplied     FeedbackStatus = "applied"
	FeedbackSkipped     FeedbackStatus = "skipped"
	FeedbackUnavailable FeedbackStatus = "unavailable"
)

// Metadata describes the run in the header section.
type Metadata struct {
	Title       string
	Range       calendar.Range
	GeneratedAt time.Time
	Source      string
	RunID       string
	Records     int
}

// SectionKind identifies the role of a section.
type SectionKind string

const (
	SectionHeader              SectionKind = "header"
	SectionAnalysis            SectionKind = "analysis"
	SectionAnalysisUnavailable SectionKind = "analysis_unavailable"
	SectionFeedback            SectionKind = "feedback"
)

// Section is one titled block of Markdown text.
type Section struct {
	Kind  SectionKind
	Name  string
	Title string
	Body  string
}

// AnalyzerFailure records an analyzer that produced no result.
type AnalyzerFailure struct {
	Name   string
	Reason string
}

// Report is a finalized document. It is a value; the compositor keeps no
// reference to the slices it contains.
type Report struct {
	Metadata       Metadata
	Days           []calendar.Day
	Results        []analyzer.Result
	Failures       []AnalyzerFailure
	Warnings       []Warning
	Feedback       FeedbackStatus
	FeedbackReason string
	Sections       []Section
}

// Markdown renders the sections in order.
func (r Report) Markdown() string {
	var b strings.Builder
	for i, s := range r.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Kind == SectionHeader {
			b.WriteString("# ")
		} else {
			b.WriteString("## ")
		}
		b.WriteString(s.Title)
		b.WriteString("\n\n")
		body := strings.TrimRight(s.Body, "\n")
		if body != "" {
			b.WriteString(body)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Section returns the first section with the given kind and name.
func (r Report) Section(kind SectionKind, name string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Kind == kind && s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// HasWarnings reports whether any warning was recorded.
func (r Report) HasWarnings() bool { return len(r.Warnings) > 0 }
