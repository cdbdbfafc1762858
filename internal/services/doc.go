// Package services defines shared utilities consumed by the pipeline stages and
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and analyzer
//     names for logging.
//   - Structured error markers plus the Wrap helper that tag failures so the
//     report compositor can render a short reason ("timeout", "authentication
//     error") without inspecting concrete error types.
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability) stays uniform across the pipeline.
package services
