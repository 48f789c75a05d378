package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/drrengine/drrset"
)

// NewValidateCommand builds `drrc validate <ruleset.yaml>`, which loads and
// strictly validates a YAML rule-set descriptor without running it.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "validate <ruleset.yaml>",
		Short:         "Validate a rule-set descriptor without applying it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	spec, err := drrset.LoadRuleSetSpec(path)
	if err != nil {
		_ = formatter.Error("E_LOAD", err.Error())
		return NewExitError(ExitCommandError, err.Error())
	}

	if _, err := drrset.Build(spec, Builtins()); err != nil {
		_ = formatter.Error("E_COMPILE", err.Error())
		return NewExitError(ExitFailure, err.Error())
	}

	msg := color.GreenString("valid: %d rule(s)", len(spec.Rules))
	return formatter.Success(msg, map[string]int{"rules": len(spec.Rules)})
}
