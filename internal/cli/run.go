package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/drrengine/drrset"
	"github.com/katalvlaran/drrengine/internal/rrlog"
	"github.com/katalvlaran/drrengine/ir/memir"
)

// NewRunCommand builds `drrc run <ruleset.yaml>`, which loads a rule set,
// applies it to a named demo program, and prints the program before and
// after, colorized the way a reviewer would want a diff highlighted.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var demoName string
	var iterationLimit int

	cmd := &cobra.Command{
		Use:           "run <ruleset.yaml>",
		Short:         "Apply a rule set to a demo program until fixed point",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrive(rootOpts, args[0], demoName, iterationLimit, cmd)
		},
	}

	cmd.Flags().StringVar(&demoName, "demo", "transpose-chain", fmt.Sprintf("built-in demo program to rewrite (%v)", demoNames()))
	cmd.Flags().IntVar(&iterationLimit, "max-iterations", 1000, "fixed-point iteration cap")

	return cmd
}

func runDrive(opts *RootOptions, rulesetPath, demoName string, iterationLimit int, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	restore := rrlog.SetSink(func(level rrlog.Level, line string) {
		if level == rrlog.LevelWarn {
			formatter.VerboseLog("%s %s", color.YellowString("warn:"), line)
		} else {
			formatter.VerboseLog("%s %s", color.CyanString("debug:"), line)
		}
	})
	defer rrlog.SetSink(restore)

	spec, err := drrset.LoadRuleSetSpec(rulesetPath)
	if err != nil {
		_ = formatter.Error("E_LOAD", err.Error())
		return NewExitError(ExitCommandError, err.Error())
	}

	rs, err := drrset.Build(spec, Builtins(), drrset.WithIterationLimit(iterationLimit))
	if err != nil {
		_ = formatter.Error("E_COMPILE", err.Error())
		return NewExitError(ExitCommandError, err.Error())
	}

	prog, err := lookupDemo(demoName)
	if err != nil {
		_ = formatter.Error("E_DEMO", err.Error())
		return NewExitError(ExitCommandError, err.Error())
	}

	before := prog.String()
	rewriter := memir.NewRewriter(prog)
	applied, err := rs.Drive(prog, rewriter)
	after := prog.String()

	if err != nil && !errors.Is(err, drrset.ErrFixedPointNotReached) {
		_ = formatter.Error("E_DRIVE", err.Error())
		return NewExitError(ExitFailure, err.Error())
	}

	if opts.Format == "json" {
		if serr := formatter.Success("", map[string]interface{}{
			"before":   before,
			"after":    after,
			"rewrites": applied,
			"fixed_point_reached": err == nil,
		}); serr != nil {
			return serr
		}
		if err != nil {
			return NewExitError(ExitFailure, err.Error())
		}
		return nil
	}

	fmt.Fprintln(formatter.Writer, color.CyanString("before:"))
	fmt.Fprint(formatter.Writer, before)
	fmt.Fprintln(formatter.Writer, color.CyanString("after:"))
	fmt.Fprint(formatter.Writer, after)

	if err != nil {
		fmt.Fprintln(formatter.Writer, color.RedString("%d rewrite(s) applied; iteration limit reached before a fixed point", applied))
		return NewExitError(ExitFailure, err.Error())
	}
	fmt.Fprintln(formatter.Writer, color.GreenString("%d rewrite(s) applied; fixed point reached", applied))
	return nil
}
