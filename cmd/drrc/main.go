// Command drrc is the reference driver for the DRR engine: it loads a
// YAML-authored rule set and applies it to a built-in demo program,
// printing the result. See internal/cli for the command implementations.
package main

import (
	"os"

	"github.com/katalvlaran/drrengine/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
