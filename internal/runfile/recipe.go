package runfile

import "strings"

// Recipe is a named sequence of command lines.
type Recipe struct {
	Name         string
	Dependencies []string
	Lines        []string
	Doc          string // comment line immediately above the header, if any
}

// IsShebang reports whether the recipe body is a script executed as a
// whole file rather than line by line.
func (r *Recipe) IsShebang() bool {
	return len(r.Lines) > 0 && strings.HasPrefix(r.Lines[0], "#!")
}

// Assignment is a top-level `name := "value"` binding. Exported assignments
// always reach recipe environments; the rest only when the export setting
// is on.
type Assignment struct {
	Name     string
	Value    StringLiteral
	Exported bool
}

// Runfile is the parsed form of one source file: directives and recipes in
// source order.
type Runfile struct {
	Directives  []Directive
	Assignments []Assignment
	Recipes     []*Recipe
}

// Recipe returns the named recipe, or nil if it is not defined.
func (f *Runfile) Recipe(name string) *Recipe {
	for _, r := range f.Recipes {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// First returns the first recipe in source order, the default when no
// recipe is named on the command line. Nil when the file has no recipes.
func (f *Runfile) First() *Recipe {
	if len(f.Recipes) == 0 {
		return nil
	}
	return f.Recipes[0]
}
