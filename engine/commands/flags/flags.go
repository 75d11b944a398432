// Package flags provides reusable flag helpers for CLI commands.
//
// This package should only contain common flags that can be used by multiple commands
// to ensure unified naming and consistent behavior across the CLI.
// Command-specific flags should be defined locally in the command file.
package flags

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// MustString returns the string value, ignoring the error.
// Safe to use with registered flags where GetString cannot fail.
func MustString(s string, _ error) string { return s }

// Address adds a required address flag to a command.
// Retrieve the value with cmd.Flags().GetString(name).
//
// Usage:
//
//	flags.Address(cmd, "token", "t", "Token address")
//	// later in RunE:
//	token := flags.MustString(cmd.Flags().GetString("token"))
func Address(cmd *cobra.Command, name, shorthand, usage string) {
	cmd.Flags().StringP(name, shorthand, "", usage+" (required)")
	_ = cmd.MarkFlagRequired(name)
}

// Output adds the persistent --output flag selecting the output format (default: text).
// Retrieve the value with cmd.Flags().GetString("output").
func Output(cmd *cobra.Command) {
	cmd.PersistentFlags().String("output", "text", `Output format, "text" or "json"`)
}

// WordSepNormalize makes flag names accept underscores in place of dashes, so --rpc_url
// and --rpc-url are the same flag.
func WordSepNormalize(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
