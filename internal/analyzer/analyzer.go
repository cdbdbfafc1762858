// Package analyzer defines the analyzer contract, the reference project, mode,
// and routine plugins, and the ordered registry that runs them.
//
// An analyzer is a pure aggregation over an immutable record set. Any type
// with Name and Analyze can be registered; the registry never consults global
// state, so concurrent runs with different registries do not interfere.
package analyzer

import (
	"fmt"
	"time"

	"tccretro/internal/records"
	"tccretro/internal/services"
)

// Unspecified labels records whose grouping field is empty.
const Unspecified = "(unspecified)"

// Analyzer aggregates a record set into one Result.
type Analyzer interface {
	Name() string
	Analyze(rs []records.Record) (Result, error)
}

// Category holds the aggregated metrics of one group.
type Category struct {
	Label     string
	Estimated time.Duration
	Actual    time.Duration
	// Variance is Actual - Estimated.
	Variance time.Duration
	// Share is the percentage of total actual time, rounded to two decimals.
	Share float64
	Count int
}

// Result is the output of one analyzer. Categories are ordered by descending
// actual time with ties broken by label.
type Result struct {
	Name           string
	Title          string
	Categories     []Category
	TotalEstimated time.Duration
	TotalActual    time.Duration
	Records        int
	// ParseErrors counts duration cells that could not be parsed and were
	// treated as zero.
	ParseErrors int
	// Chart is an opaque reference to a rendered chart artifact, if any.
	Chart string
}

// Category looks up a group by label.
func (r Result) Category(label string) (Category, bool) {
	for _, c := range r.Categories {
		if c.Label == label {
			return c, true
		}
	}
	return Category{}, false
}

// Top returns the category with the largest actual time.
func (r Result) Top() (Category, bool) {
	if len(r.Categories) == 0 {
		return Category{}, false
	}
	return r.Categories[0], true
}

// TotalVariance is TotalActual - TotalEstimated.
func (r Result) TotalVariance() time.Duration {
	return r.TotalActual - r.TotalEstimated
}

// AnalysisError reports that one analyzer could not produce a result for
// otherwise valid input.
type AnalysisError struct {
	Analyzer string
	Reason   string
	Err      error
}

func (e *AnalysisError) Error() string {
	msg := fmt.Sprintf("analyzer %s: %s", e.Analyzer, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the services.ErrAnalysis marker and the cause.
func (e *AnalysisError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrAnalysis}
	}
	return []error{services.ErrAnalysis, e.Err}
}

// ReasonEmptyInput is reported when an analyzer receives no records.
const ReasonEmptyInput = "no records to aggregate"
