// Package main hosts the chapsplit CLI entrypoint and command graph.
//
// The root command splits one input file into a file per chapter. Helper
// subcommands check tool readiness, scaffold a configuration file, and show
// the run journal. Configuration resolution and logging setup live in
// commandContext so commands only translate flags into requests for the
// internal packages.
package main
