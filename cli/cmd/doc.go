// Package cmd provides the yapp subcommands: eval, check, vars, postfix,
// repl and init.
//
// Every formula command accepts environment documents with -e (YAML or JSON,
// see package binding) and individual bindings with --var name=literal. A
// formula argument of "-", or no argument at all, reads the formula from
// standard input.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
