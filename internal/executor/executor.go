// Package executor turns recipe lines into processes using the resolved
// shell invocation.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	"github.com/runger/taskrun/internal/runfile"
	"github.com/runger/taskrun/internal/settings"
)

// Executor runs recipes with a fixed, already-resolved shell invocation.
// Shell and ShellArgs come from settings.ShellCommand; Settings supplies
// the execution-affecting flags (ignore-comments, positional-arguments,
// tempdir).
type Executor struct {
	Shell     string
	ShellArgs []string
	NoShell   bool // shlex-split each line and execute it directly
	Dir       string
	Env       []string // child environment; parent environment when nil
	Settings  *settings.Settings
	Logger    *slog.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Echo writes a line to Stderr before it runs. Overridable so the CLI
	// can colorize; the default prints the line as-is.
	Echo func(w io.Writer, line string)
}

// LineError reports a recipe line that failed to run or exited non-zero.
type LineError struct {
	Recipe string
	Line   string
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("recipe %q: line %q: %v", e.Recipe, e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// ExitCode extracts the process exit code from an error returned by
// RunRecipe. It returns 1 for errors that never reached the process.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

// RunRecipe executes the recipe. Simple recipes run line by line, each in
// a fresh shell; a non-zero exit stops the recipe. Shebang recipes are
// written out as a script and executed once.
func (e *Executor) RunRecipe(ctx context.Context, r *runfile.Recipe, args []string) error {
	if r.IsShebang() {
		return e.runShebang(ctx, r, args)
	}

	for _, line := range r.Lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") && e.Settings.IgnoreComments {
			continue
		}

		quiet := false
		if rest, ok := strings.CutPrefix(trimmed, "@"); ok {
			quiet = true
			trimmed = strings.TrimSpace(rest)
		}
		if !quiet {
			e.echo(trimmed)
		}

		cmd, err := e.command(ctx, trimmed, r.Name, args)
		if err != nil {
			return &LineError{Recipe: r.Name, Line: trimmed, Err: err}
		}
		e.logStart(cmd)
		if err := cmd.Run(); err != nil {
			return &LineError{Recipe: r.Name, Line: trimmed, Err: err}
		}
	}
	return nil
}

// command builds the process for one recipe line. In shell mode the line
// becomes the final shell argument; with positional-arguments the recipe
// name and its arguments follow it so the shell sees them as $0..$n.
func (e *Executor) command(ctx context.Context, line, recipe string, args []string) (*exec.Cmd, error) {
	var argv []string
	if e.NoShell {
		words, err := shlex.Split(line)
		if err != nil {
			return nil, fmt.Errorf("splitting line: %w", err)
		}
		if len(words) == 0 {
			return nil, errors.New("empty command")
		}
		argv = words
	} else {
		argv = make([]string, 0, len(e.ShellArgs)+len(args)+2)
		argv = append(argv, e.ShellArgs...)
		argv = append(argv, line)
		if e.Settings.PositionalArguments {
			argv = append(argv, recipe)
			argv = append(argv, args...)
		}
	}

	cmd := exec.CommandContext(ctx, e.cmdName(argv[0]), e.cmdArgs(argv)...)
	cmd.Dir = e.Dir
	cmd.Env = e.Env
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	return cmd, nil
}

func (e *Executor) cmdName(first string) string {
	if e.NoShell {
		return first
	}
	return e.Shell
}

func (e *Executor) cmdArgs(argv []string) []string {
	if e.NoShell {
		return argv[1:]
	}
	return argv
}

// runShebang writes the whole recipe body to a script file and executes
// it directly, letting the kernel honor the shebang line. The file lives
// under the tempdir setting when one is declared.
func (e *Executor) runShebang(ctx context.Context, r *runfile.Recipe, args []string) error {
	dir := e.Settings.Tempdir
	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return &LineError{Recipe: r.Name, Line: r.Lines[0], Err: err}
		}
	}

	script, err := os.CreateTemp(dir, "taskrun-*")
	if err != nil {
		return &LineError{Recipe: r.Name, Line: r.Lines[0], Err: err}
	}
	defer os.Remove(script.Name())

	body := strings.Join(r.Lines, "\n") + "\n"
	if _, err := script.WriteString(body); err != nil {
		script.Close()
		return &LineError{Recipe: r.Name, Line: r.Lines[0], Err: err}
	}
	if err := script.Close(); err != nil {
		return &LineError{Recipe: r.Name, Line: r.Lines[0], Err: err}
	}
	if err := os.Chmod(script.Name(), 0o700); err != nil {
		return &LineError{Recipe: r.Name, Line: r.Lines[0], Err: err}
	}

	cmd := exec.CommandContext(ctx, script.Name(), args...)
	cmd.Dir = e.Dir
	cmd.Env = e.Env
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	e.logStart(cmd)
	if err := cmd.Run(); err != nil {
		return &LineError{Recipe: r.Name, Line: r.Lines[0], Err: err}
	}
	return nil
}

func (e *Executor) echo(line string) {
	if e.Stderr == nil {
		return
	}
	if e.Echo != nil {
		e.Echo(e.Stderr, line)
		return
	}
	fmt.Fprintln(e.Stderr, line)
}

func (e *Executor) logStart(cmd *exec.Cmd) {
	if e.Logger == nil {
		return
	}
	e.Logger.Debug("spawning process", "path", cmd.Path, "args", cmd.Args[1:])
}
