// Package pipeline runs one retrospective end to end: calendar resolution,
// analyzers, charts, prompt assembly, feedback, composition, output, and run
// history.
//
// Stages run sequentially. Cancellation is checked at stage boundaries and
// propagated into the feedback call. Analyzer and feedback failures degrade
// the report instead of aborting it; only cancellation, output, and input
// errors end a run without a written report.
package pipeline
