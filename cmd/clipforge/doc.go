// Package main hosts the clipforge CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into export runs,
// readiness probes, media inspection, job history queries, and configuration
// scaffolding. Configuration resolution and logger setup live here once so
// subcommands stay declarative.
//
// Heavy lifting belongs in the internal packages; commands should only parse
// flags, wire components together, and present results.
package main
