// Command boundary simulates, traces and replays sphere runs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/boundary/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
