// Package config is the single source of configuration for clipforge.
//
// Settings start from compiled-in defaults, get overlaid by an optional
// TOML file (by default ~/.config/clipforge/config.toml), and finish with
// normalization: tilde and relative paths are expanded, worker counts are
// clamped, log levels are canonicalized, and the CLIPFORGE_FFMPEG and
// CLIPFORGE_FFPROBE environment variables override the configured tool
// paths. Validate rejects values the pipeline cannot run with, such as an
// unknown quality preset or a zero frame rate, before any job starts.
//
// Code elsewhere should never read TOML or expand paths itself; it takes a
// *Config and trusts that the values inside have already been sanitized.
package config
