// Package config loads, normalizes, and validates tscproj configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment overrides such as TSCPROJ_LOG_LEVEL.
// Commands obtain transform defaults, output naming, logging, and run-history
// settings from the Config type so every entry point behaves the same way.
package config
