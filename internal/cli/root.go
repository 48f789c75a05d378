package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds the flags shared by every drrc subcommand.
type RootOptions struct {
	Verbose bool
	Format  string
}

// ValidFormats lists the output formats drrc accepts.
var ValidFormats = []string{"text", "json"}

// NewRootCommand builds the drrc root command and registers its subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "drrc",
		Short: "drrc drives a declarative rewrite rule set to a fixed point",
		Long:  "drrc loads a YAML-authored rewrite rule set, applies it to a sample in-memory program, and prints the rewritten result.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "print per-rewrite diagnostics")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
