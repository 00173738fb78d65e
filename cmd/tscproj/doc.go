// Package main hosts the tscproj CLI entrypoint and command graph.
//
// The Cobra command tree wraps the project engine: xyscale and timescale load
// a project, rescale it, and write the result with a backup; info, validate,
// tracks, and markers inspect projects without changing them; batch applies
// any of those to many files; history reads the run journal. Configuration,
// logging, and the run journal are resolved once per invocation by the
// command context so subcommands stay declarative.
package main
