// Package main is the entry point for the taskrun CLI.
package main

import (
	"errors"
	"os"

	"github.com/runger/taskrun/internal/cmd"
	"github.com/runger/taskrun/internal/executor"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Recipe failures carry the child's exit code; everything else
		// is a runner error.
		var lineErr *executor.LineError
		if errors.As(err, &lineErr) {
			os.Exit(executor.ExitCode(err))
		}
		os.Stderr.WriteString("error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
