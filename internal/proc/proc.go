// Package proc runs external tools and captures their results.
//
// Every process the harness touches (build tool, compiler-under-test,
// assembler/linker, produced executable) goes through Run. Arguments are
// passed directly to the program; nothing is interpreted by a shell.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Capture is the observable result of one process run.
type Capture struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the process exited with status 0.
func (c *Capture) Success() bool {
	return c.ExitCode == 0
}

// Command describes a process invocation.
type Command struct {
	// Argv is the program followed by its arguments. Argv[0] is resolved
	// through PATH unless it contains a path separator.
	Argv []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// DiscardOutput drops stdout and stderr instead of buffering them.
	DiscardOutput bool
}

// Run starts the command, waits for it and returns its exit status and output.
//
// A non-zero exit is not an error: it is reported through Capture.ExitCode.
// An error is returned only when the process could not be started or waited
// for (program not found, permission denied, context cancelled).
func Run(ctx context.Context, c Command) (*Capture, error) {
	if len(c.Argv) == 0 {
		return nil, errors.New("run: empty command")
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir

	var stdout, stderr bytes.Buffer
	if !c.DiscardOutput {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || ctx.Err() != nil {
			return nil, fmt.Errorf("run %s: %w", c.Argv[0], err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &Capture{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}
