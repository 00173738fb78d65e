// Package journal records transform runs in a local SQLite database.
//
// Every xyscale, timescale, or batch item appends one row describing the
// input, output, factor, outcome, and counts of warnings and sanitized
// values. The history command reads the rows back newest first.
package journal
