// Command goldrun runs golden-file tests against a compiler.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/goldrun/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
