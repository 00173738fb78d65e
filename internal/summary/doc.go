// Package summary inspects a loaded project without modifying it.
//
// Analyze produces the overview shown by the info command: canvas, media
// catalog counts, timeline structure, and a complexity rating. Tracks and
// Markers produce the rows behind the listing commands, with times converted
// from editRate ticks to frame stamps.
package summary
