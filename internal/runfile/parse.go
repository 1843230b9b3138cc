package runfile

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ParseError is a syntax error with the 1-based source line it occurred on.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func errorf(line int, format string, args ...any) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ParseFile reads and parses the Runfile at path.
func ParseFile(path string) (*Runfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses Runfile source. The grammar is line oriented:
//
//	set name                     boolean setting, implied true
//	set name := value            setting with a value
//	name := "literal"            top-level assignment
//	export name := "literal"     assignment exported to recipe environments
//	name: dep1 dep2              recipe header, indented body lines follow
//
// Duplicate recipe names are an error unless an allow-duplicate-recipes
// directive appeared earlier in the file, in which case the last
// definition wins.
func Parse(src []byte) (*Runfile, error) {
	f := &Runfile{}
	lines := strings.Split(string(src), "\n")

	allowDuplicates := false
	pendingDoc := ""

	for i := 0; i < len(lines); i++ {
		lineno := i + 1
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			pendingDoc = ""
			continue

		case strings.HasPrefix(trimmed, "#"):
			pendingDoc = strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			continue

		case line[0] == ' ' || line[0] == '\t':
			return nil, errorf(lineno, "unexpected indentation outside a recipe body")
		}
		doc := pendingDoc
		pendingDoc = ""

		if trimmed == "set" {
			return nil, errorf(lineno, "set requires a setting name")
		}
		if rest, ok := strings.CutPrefix(trimmed, "set "); ok {
			d, err := parseDirective(lineno, strings.TrimSpace(rest))
			if err != nil {
				return nil, err
			}
			if a, ok := d.(AllowDuplicateRecipes); ok {
				allowDuplicates = a.Value
			}
			f.Directives = append(f.Directives, d)
			continue
		}

		if strings.Contains(trimmed, ":=") {
			a, err := parseAssignment(lineno, trimmed)
			if err != nil {
				return nil, err
			}
			f.Assignments = append(f.Assignments, a)
			continue
		}

		header, rest, ok := strings.Cut(trimmed, ":")
		if !ok {
			return nil, errorf(lineno, "expected a setting, assignment, or recipe header")
		}
		name := strings.TrimSpace(header)
		if !identRe.MatchString(name) {
			return nil, errorf(lineno, "invalid recipe name %q", name)
		}
		deps, err := parseDependencies(lineno, rest)
		if err != nil {
			return nil, err
		}

		body, consumed := collectBody(lines[i+1:])
		i += consumed

		recipe := &Recipe{Name: name, Dependencies: deps, Lines: body, Doc: doc}
		if existing := f.Recipe(name); existing != nil {
			if !allowDuplicates {
				return nil, errorf(lineno, "recipe %q is already defined (set allow-duplicate-recipes to permit this)", name)
			}
			*existing = *recipe
			continue
		}
		f.Recipes = append(f.Recipes, recipe)
	}

	return f, nil
}

// booleanSettings maps setting names to constructors for the directives
// that take a boolean value.
var booleanSettings = map[string]func(bool) Directive{
	"allow-duplicate-recipes": func(v bool) Directive { return AllowDuplicateRecipes{v} },
	"dotenv-load":             func(v bool) Directive { return DotenvLoad{v} },
	"export":                  func(v bool) Directive { return Export{v} },
	"fallback":                func(v bool) Directive { return Fallback{v} },
	"ignore-comments":         func(v bool) Directive { return IgnoreComments{v} },
	"positional-arguments":    func(v bool) Directive { return PositionalArguments{v} },
	"windows-powershell":      func(v bool) Directive { return WindowsPowerShell{v} },
}

func parseDirective(lineno int, rest string) (Directive, error) {
	name := rest
	value := ""
	hasValue := false
	if n, v, ok := strings.Cut(rest, ":="); ok {
		name = strings.TrimSpace(n)
		value = strings.TrimSpace(v)
		hasValue = true
	}

	if mk, ok := booleanSettings[name]; ok {
		if !hasValue {
			return mk(true), nil
		}
		switch value {
		case "true":
			return mk(true), nil
		case "false":
			return mk(false), nil
		}
		return nil, errorf(lineno, "setting %s expects true or false, got %q", name, value)
	}

	switch name {
	case "shell", "windows-shell":
		if !hasValue {
			return nil, errorf(lineno, "setting %s requires a value", name)
		}
		spec, err := parseShellSpec(lineno, value)
		if err != nil {
			return nil, err
		}
		if name == "shell" {
			return Shell{Spec: spec}, nil
		}
		return WindowsShell{Spec: spec}, nil

	case "tempdir":
		if !hasValue {
			return nil, errorf(lineno, "setting tempdir requires a value")
		}
		lit, remainder, err := parseLiteral(lineno, value)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(remainder) != "" {
			return nil, errorf(lineno, "unexpected text after tempdir value")
		}
		return Tempdir{Path: lit.Cooked}, nil
	}

	return nil, errorf(lineno, "unknown setting %q", name)
}

// parseShellSpec parses the `["command", "arg", ...]` array form used by
// the shell and windows-shell settings.
func parseShellSpec(lineno int, value string) (ShellSpec, error) {
	var spec ShellSpec

	if !strings.HasPrefix(value, "[") {
		return spec, errorf(lineno, `shell settings expect an array like ["sh", "-cu"]`)
	}
	rest := strings.TrimSpace(value[1:])

	var literals []StringLiteral
	for !strings.HasPrefix(rest, "]") {
		lit, remainder, err := parseLiteral(lineno, rest)
		if err != nil {
			return spec, err
		}
		literals = append(literals, lit)
		rest = strings.TrimSpace(remainder)
		if strings.HasPrefix(rest, ",") {
			rest = strings.TrimSpace(rest[1:])
			continue
		}
		if !strings.HasPrefix(rest, "]") {
			return spec, errorf(lineno, "expected ',' or ']' in shell array")
		}
	}
	if strings.TrimSpace(rest[1:]) != "" {
		return spec, errorf(lineno, "unexpected text after shell array")
	}
	if len(literals) == 0 {
		return spec, errorf(lineno, "shell array must name a command")
	}

	spec.Command = literals[0]
	spec.Arguments = literals[1:]
	return spec, nil
}

func parseAssignment(lineno int, line string) (Assignment, error) {
	var a Assignment

	left, right, _ := strings.Cut(line, ":=")
	name := strings.TrimSpace(left)
	if rest, ok := strings.CutPrefix(name, "export "); ok {
		a.Exported = true
		name = strings.TrimSpace(rest)
	}
	if !identRe.MatchString(name) {
		return a, errorf(lineno, "invalid variable name %q", name)
	}

	lit, remainder, err := parseLiteral(lineno, strings.TrimSpace(right))
	if err != nil {
		return a, err
	}
	if strings.TrimSpace(remainder) != "" {
		return a, errorf(lineno, "unexpected text after assignment value")
	}

	a.Name = name
	a.Value = lit
	return a, nil
}

// parseLiteral parses a quoted string literal at the start of s and returns
// it along with the unconsumed remainder. Double quotes delimit cooked
// literals, single quotes raw ones.
func parseLiteral(lineno int, s string) (StringLiteral, string, error) {
	var zero StringLiteral
	if s == "" {
		return zero, "", errorf(lineno, "expected a string literal")
	}

	var kind StringKind
	switch s[0] {
	case '"':
		kind = KindCooked
	case '\'':
		kind = KindRaw
	default:
		return zero, "", errorf(lineno, "expected a string literal, got %q", s)
	}

	delim := s[0]
	for j := 1; j < len(s); j++ {
		if kind == KindCooked && s[j] == '\\' {
			j++ // the escaped character is validated during cooking
			continue
		}
		if s[j] == delim {
			lit, err := newLiteral(kind, s[1:j])
			if err != nil {
				return zero, "", errorf(lineno, "%v", err)
			}
			return lit, s[j+1:], nil
		}
	}
	return zero, "", errorf(lineno, "unterminated string literal")
}

func parseDependencies(lineno int, rest string) ([]string, error) {
	var deps []string
	for _, tok := range strings.Fields(rest) {
		if strings.HasPrefix(tok, "#") {
			break // trailing comment
		}
		if !identRe.MatchString(tok) {
			return nil, errorf(lineno, "invalid dependency name %q", tok)
		}
		deps = append(deps, tok)
	}
	return deps, nil
}

// collectBody gathers the indented body lines following a recipe header.
// It returns the dedented lines and how many source lines were consumed.
// Interior blank lines are kept (as empty strings) so shebang scripts keep
// their shape; trailing blanks are dropped.
func collectBody(lines []string) ([]string, int) {
	var body []string
	consumed := 0
	blanks := 0

	var indent string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			// Only part of the body if more indented lines follow.
			blanks++
			continue
		}
		if line[0] != ' ' && line[0] != '\t' {
			break
		}

		if len(body) == 0 {
			consumed += blanks
			blanks = 0
		}
		for ; blanks > 0; blanks-- {
			body = append(body, "")
			consumed++
		}
		if indent == "" {
			indent = line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		}
		if rest, ok := strings.CutPrefix(line, indent); ok {
			body = append(body, rest)
		} else {
			body = append(body, strings.TrimLeft(line, " \t"))
		}
		consumed++
	}

	return body, consumed + blanks
}
