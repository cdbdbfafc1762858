// Package config loads, normalizes, and validates tccretro configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AWS_REGION and ANTHROPIC_API_KEY. The Config type centralizes every knob the
// pipeline and CLI need: analyzer registry membership, row cap, feedback
// provider settings, and output placement.
package config
