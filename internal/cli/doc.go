// Package cli implements the interactive dashboard for the tour catalog: a
// line-oriented REPL whose commands list, inspect and edit locations, attach
// and detach media, and move the catalog in and out as JSON, YAML or CSV.
package cli
