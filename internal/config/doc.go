// Package config loads, normalizes, and validates chapsplit configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as CHAPSPLIT_FFMPEG.
// Command-line flags are layered on top by the CLI; the resulting values are
// turned into an immutable chapters.Options before any work starts.
package config
