// Package settings folds Runfile directives into an immutable snapshot and
// decides which shell executes recipe lines.
package settings

import (
	"github.com/runger/taskrun/internal/runfile"
)

// Built-in shell constants. DefaultShell runs recipe lines everywhere a
// Runfile does not say otherwise; the PowerShell pair is used on Windows
// when the windows-powershell setting is on.
const (
	DefaultShell      = "sh"
	WindowsPowerShell = "powershell.exe"
)

// Argument lists for the built-in shells. Callers must not modify these.
var (
	DefaultShellArgs      = []string{"-cu"}
	WindowsPowerShellArgs = []string{"-NoLogo", "-Command"}
)

// Settings is the consolidated snapshot of all `set` directives in a
// Runfile. It is built once per file and read-only afterward.
type Settings struct {
	AllowDuplicateRecipes bool
	DotenvLoad            *bool // nil when the Runfile does not say
	Export                bool
	Fallback              bool
	IgnoreComments        bool
	PositionalArguments   bool
	Shell                 *runfile.ShellSpec
	Tempdir               string
	WindowsPowerShell     bool
	WindowsShell          *runfile.ShellSpec
}

// New folds directives in source order into a snapshot. Each directive
// fully replaces the previous value of its setting, so the snapshot
// reflects the last directive of each kind. An empty input yields the zero
// snapshot. New cannot fail: malformed directives are rejected by the
// parser before they get here.
func New(directives []runfile.Directive) *Settings {
	s := &Settings{}

	for _, d := range directives {
		switch d := d.(type) {
		case runfile.AllowDuplicateRecipes:
			s.AllowDuplicateRecipes = d.Value
		case runfile.DotenvLoad:
			v := d.Value
			s.DotenvLoad = &v
		case runfile.Export:
			s.Export = d.Value
		case runfile.Fallback:
			s.Fallback = d.Value
		case runfile.IgnoreComments:
			s.IgnoreComments = d.Value
		case runfile.PositionalArguments:
			s.PositionalArguments = d.Value
		case runfile.Shell:
			spec := d.Spec
			s.Shell = &spec
		case runfile.Tempdir:
			s.Tempdir = d.Path
		case runfile.WindowsPowerShell:
			s.WindowsPowerShell = d.Value
		case runfile.WindowsShell:
			spec := d.Spec
			s.WindowsShell = &spec
		}
	}

	return s
}

// Overrides are the command-line values that take precedence over Runfile
// shell declarations. Shell is unset when empty; ShellArgs is unset when
// nil (an empty non-nil slice counts as set). Windows is the injected
// platform flag: callers pass runtime.GOOS == "windows" so resolution
// itself stays testable on any host.
type Overrides struct {
	Shell     string
	ShellArgs []string
	Windows   bool
}

// ShellCommand resolves the shell executable and argument list for this
// snapshot. It is a pure function of the snapshot and overrides and always
// produces a usable pair.
//
// Precedence, first match wins:
//
//  1. both overrides set: use them verbatim
//  2. only the command override: pair it with the built-in default args
//  3. only the args override: pair them with the built-in default command
//  4. neither: windows-shell (on Windows), then windows-powershell (on
//     Windows), then shell, then the built-in default
//
// Note that a one-axis override never inherits the other axis from the
// Runfile: overriding just the command resets the arguments to the
// built-in default, and vice versa. Mixing a new executable with
// arguments declared for a different one is never done silently.
func (s *Settings) ShellCommand(ov Overrides) (command string, args []string) {
	switch {
	case ov.Shell != "" && ov.ShellArgs != nil:
		return ov.Shell, ov.ShellArgs
	case ov.Shell != "":
		return ov.Shell, DefaultShellArgs
	case ov.ShellArgs != nil:
		return DefaultShell, ov.ShellArgs
	}

	if ov.Windows && s.WindowsShell != nil {
		return s.WindowsShell.CookedCommand(), s.WindowsShell.CookedArguments()
	}
	if ov.Windows && s.WindowsPowerShell {
		return WindowsPowerShell, WindowsPowerShellArgs
	}
	if s.Shell != nil {
		return s.Shell.CookedCommand(), s.Shell.CookedArguments()
	}
	return DefaultShell, DefaultShellArgs
}
