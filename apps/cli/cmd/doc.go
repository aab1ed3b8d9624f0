// Package cmd implements the hit CLI using Cobra.
//
// hit is a single-command tool: the root command issues one HTTP request and
// renders the response. Subcommands cover version information, shell
// completions, and the preset workflow (init scaffolds a starter config file,
// presets lists the presets a config file declares).
//
// Exit codes distinguish outcome classes: 0 for a delivered response, 1 when
// a retry-eligible status survives the retry budget, 3 for configuration
// errors, 4 for transport failures, and 64 for usage errors.
package cmd
