package runfile

// Directive is one parsed `set` instruction affecting a single setting.
//
// The implementation set is closed: every concrete directive lives in this
// file and carries the unexported marker method, so the settings fold can
// handle the full set with a type switch and a new setting kind is a
// compile-visible obligation there.
type Directive interface {
	directive()
}

// AllowDuplicateRecipes permits later recipe definitions to replace
// earlier ones with the same name.
type AllowDuplicateRecipes struct{ Value bool }

// DotenvLoad controls loading of a `.env` file next to the Runfile.
type DotenvLoad struct{ Value bool }

// Export makes top-level assignments visible to recipes as environment
// variables.
type Export struct{ Value bool }

// Fallback lets recipe lookup continue in parent directories when the
// requested recipe is not defined.
type Fallback struct{ Value bool }

// IgnoreComments strips comment lines from recipe bodies before execution.
type IgnoreComments struct{ Value bool }

// PositionalArguments passes recipe arguments through as positional shell
// arguments.
type PositionalArguments struct{ Value bool }

// Shell declares the shell used to execute recipe lines on any platform.
type Shell struct{ Spec ShellSpec }

// Tempdir sets the directory used for shebang recipe script files.
type Tempdir struct{ Path string }

// WindowsPowerShell selects the built-in PowerShell invocation on Windows.
type WindowsPowerShell struct{ Value bool }

// WindowsShell declares a Windows-specific shell, taking precedence over
// both WindowsPowerShell and Shell on that platform.
type WindowsShell struct{ Spec ShellSpec }

func (AllowDuplicateRecipes) directive() {}
func (DotenvLoad) directive()            {}
func (Export) directive()                {}
func (Fallback) directive()              {}
func (IgnoreComments) directive()        {}
func (PositionalArguments) directive()   {}
func (Shell) directive()                 {}
func (Tempdir) directive()               {}
func (WindowsPowerShell) directive()     {}
func (WindowsShell) directive()          {}
