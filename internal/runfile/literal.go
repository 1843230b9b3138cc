// Package runfile implements the Runfile syntax layer: string literals,
// settings directives, recipes, and the line-oriented parser that produces
// them.
package runfile

import (
	"fmt"
	"strings"
)

// StringKind describes how a string literal was delimited in source and
// whether escape sequences are processed when cooking it.
type StringKind int

const (
	// KindCooked is a double-quoted literal; escape sequences are resolved.
	KindCooked StringKind = iota
	// KindRaw is a single-quoted literal; the contents are used verbatim.
	KindRaw
)

// Delimiter returns the quote character that delimits literals of this kind.
func (k StringKind) Delimiter() string {
	if k == KindRaw {
		return "'"
	}
	return `"`
}

// ProcessesEscapes reports whether literals of this kind resolve escape
// sequences when cooked.
func (k StringKind) ProcessesEscapes() bool {
	return k == KindCooked
}

// StringLiteral is a string literal carrying both its raw source form and
// its cooked (escape-processed) value. Settings resolution only reads the
// cooked form; the raw form is retained for diagnostics.
type StringLiteral struct {
	Kind   StringKind
	Raw    string
	Cooked string
}

// newLiteral cooks a raw literal body of the given kind. For raw literals
// the cooked value is the body verbatim. For cooked literals the recognized
// escapes are \n, \t, \r, \" and \\; anything else is an error.
func newLiteral(kind StringKind, raw string) (StringLiteral, error) {
	lit := StringLiteral{Kind: kind, Raw: raw}
	if !kind.ProcessesEscapes() {
		lit.Cooked = raw
		return lit, nil
	}

	var cooked strings.Builder
	escaped := false
	for _, r := range raw {
		if !escaped {
			if r == '\\' {
				escaped = true
				continue
			}
			cooked.WriteRune(r)
			continue
		}
		escaped = false
		switch r {
		case 'n':
			cooked.WriteByte('\n')
		case 't':
			cooked.WriteByte('\t')
		case 'r':
			cooked.WriteByte('\r')
		case '"':
			cooked.WriteByte('"')
		case '\\':
			cooked.WriteByte('\\')
		default:
			return lit, fmt.Errorf("unknown escape sequence \\%c", r)
		}
	}
	if escaped {
		return lit, fmt.Errorf("unterminated escape sequence")
	}

	lit.Cooked = cooked.String()
	return lit, nil
}

// ShellSpec is a shell declaration from a Runfile: a command literal plus an
// ordered list of argument literals.
type ShellSpec struct {
	Command   StringLiteral
	Arguments []StringLiteral
}

// CookedCommand returns the escape-processed command string.
func (s *ShellSpec) CookedCommand() string {
	return s.Command.Cooked
}

// CookedArguments returns the escape-processed argument strings in order.
func (s *ShellSpec) CookedArguments() []string {
	args := make([]string, len(s.Arguments))
	for i, a := range s.Arguments {
		args[i] = a.Cooked
	}
	return args
}
