package runfile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectives(t *testing.T) {
	src := `
# settings up top
set export
set dotenv-load := false
set tempdir := "/tmp/builds"
set shell := ["bash", "-uc"]
set windows-shell := ["pwsh.exe", "-NoLogo", "-Command"]
set windows-powershell := true
`
	f, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, f.Directives, 6)

	assert.Equal(t, Export{true}, f.Directives[0])
	assert.Equal(t, DotenvLoad{false}, f.Directives[1])
	assert.Equal(t, Tempdir{"/tmp/builds"}, f.Directives[2])

	shell, ok := f.Directives[3].(Shell)
	require.True(t, ok)
	assert.Equal(t, "bash", shell.Spec.CookedCommand())
	assert.Equal(t, []string{"-uc"}, shell.Spec.CookedArguments())

	winShell, ok := f.Directives[4].(WindowsShell)
	require.True(t, ok)
	assert.Equal(t, "pwsh.exe", winShell.Spec.CookedCommand())
	assert.Equal(t, []string{"-NoLogo", "-Command"}, winShell.Spec.CookedArguments())

	assert.Equal(t, WindowsPowerShell{true}, f.Directives[5])
}

func TestParseRecipes(t *testing.T) {
	src := `# builds the thing
build:
	go build ./...

# runs the tests
test: build
	go vet ./...
	go test ./...
`
	f, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, f.Recipes, 2)

	build := f.Recipes[0]
	assert.Equal(t, "build", build.Name)
	assert.Equal(t, "builds the thing", build.Doc)
	assert.Empty(t, build.Dependencies)
	assert.Equal(t, []string{"go build ./..."}, build.Lines)

	test := f.Recipe("test")
	require.NotNil(t, test)
	assert.Equal(t, []string{"build"}, test.Dependencies)
	assert.Equal(t, []string{"go vet ./...", "go test ./..."}, test.Lines)

	assert.Same(t, build, f.First())
	assert.Nil(t, f.Recipe("deploy"))
}

func TestParseShebangRecipeKeepsShape(t *testing.T) {
	src := "gen:\n\t#!/bin/sh\n\tset -e\n\n\techo done\n"
	f, err := Parse([]byte(src))
	require.NoError(t, err)

	gen := f.Recipe("gen")
	require.NotNil(t, gen)
	assert.True(t, gen.IsShebang())
	assert.Equal(t, []string{"#!/bin/sh", "set -e", "", "echo done"}, gen.Lines)
}

func TestParseAssignments(t *testing.T) {
	src := `
target := "dist"
export version := "1.2.3"
`
	f, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, f.Assignments, 2)

	assert.Equal(t, "target", f.Assignments[0].Name)
	assert.Equal(t, "dist", f.Assignments[0].Value.Cooked)
	assert.False(t, f.Assignments[0].Exported)

	assert.Equal(t, "version", f.Assignments[1].Name)
	assert.True(t, f.Assignments[1].Exported)
}

func TestParseDuplicateRecipes(t *testing.T) {
	_, err := Parse([]byte("a:\n\techo one\na:\n\techo two\n"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Line)

	f, err := Parse([]byte("set allow-duplicate-recipes\na:\n\techo one\na:\n\techo two\n"))
	require.NoError(t, err)
	require.Len(t, f.Recipes, 1)
	assert.Equal(t, []string{"echo two"}, f.Recipes[0].Lines)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown setting", "set frobnicate := true\n"},
		{"bad boolean", "set export := yes\n"},
		{"bare shell", "set shell\n"},
		{"unterminated string", `set tempdir := "oops` + "\n"},
		{"shell not array", `set shell := "sh"` + "\n"},
		{"empty shell array", "set shell := []\n"},
		{"stray indentation", "\techo hi\n"},
		{"bad escape", `set tempdir := "\q"` + "\n"},
		{"trailing junk", `set tempdir := "/tmp" extra` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse(%q) error = %v, want *ParseError", tt.src, err)
			}
		})
	}
}

func TestStringLiteralCooking(t *testing.T) {
	tests := []struct {
		src    string
		cooked string
		kind   StringKind
	}{
		{`"plain"`, "plain", KindCooked},
		{`"tab\there"`, "tab\there", KindCooked},
		{`"line\n"`, "line\n", KindCooked},
		{`"quote\""`, `quote"`, KindCooked},
		{`"back\\slash"`, `back\slash`, KindCooked},
		{`'raw\nstays'`, `raw\nstays`, KindRaw},
	}

	for _, tt := range tests {
		lit, rest, err := parseLiteral(1, tt.src)
		if err != nil {
			t.Fatalf("parseLiteral(%q) error = %v", tt.src, err)
		}
		if rest != "" {
			t.Errorf("parseLiteral(%q) left %q unconsumed", tt.src, rest)
		}
		if lit.Cooked != tt.cooked {
			t.Errorf("parseLiteral(%q).Cooked = %q, want %q", tt.src, lit.Cooked, tt.cooked)
		}
		if lit.Kind != tt.kind {
			t.Errorf("parseLiteral(%q).Kind = %v, want %v", tt.src, lit.Kind, tt.kind)
		}
		if lit.Raw != tt.src[1:len(tt.src)-1] {
			t.Errorf("parseLiteral(%q).Raw = %q, want source form", tt.src, lit.Raw)
		}
	}
}

func TestStringKindMetadata(t *testing.T) {
	if KindCooked.Delimiter() != `"` || !KindCooked.ProcessesEscapes() {
		t.Error("cooked literals should be double-quoted with escape processing")
	}
	if KindRaw.Delimiter() != "'" || KindRaw.ProcessesEscapes() {
		t.Error("raw literals should be single-quoted without escape processing")
	}
}
