package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/taskrun/internal/executor"
	"github.com/runger/taskrun/internal/runfile"
	"github.com/runger/taskrun/internal/settings"
)

func writeRunfile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, RunfileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFindRunfileFrom(t *testing.T) {
	root := t.TempDir()
	path := writeRunfile(t, root, "build:\n\techo hi\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, ok := findRunfileFrom(nested)
	require.True(t, ok)
	assert.Equal(t, path, found)

	_, ok = findRunfileFrom(filepath.Join(string(filepath.Separator), "nonexistent-taskrun-test"))
	assert.False(t, ok)
}

func TestSelectRecipeDefault(t *testing.T) {
	f, err := runfile.Parse([]byte("first:\n\techo 1\nsecond:\n\techo 2\n"))
	require.NoError(t, err)
	s := settings.New(f.Directives)

	r, _, _, _, err := selectRecipe(f, s, "/x/Runfile", "")
	require.NoError(t, err)
	assert.Equal(t, "first", r.Name)

	r, _, _, _, err = selectRecipe(f, s, "/x/Runfile", "second")
	require.NoError(t, err)
	assert.Equal(t, "second", r.Name)

	_, _, _, _, err = selectRecipe(f, s, "/x/Runfile", "missing")
	assert.Error(t, err)
}

func TestSelectRecipeFallback(t *testing.T) {
	root := t.TempDir()
	writeRunfile(t, root, "deploy:\n\techo deploying\n")
	child := filepath.Join(root, "svc")
	require.NoError(t, os.MkdirAll(child, 0o755))
	childPath := writeRunfile(t, child, "set fallback\nbuild:\n\techo building\n")

	f, err := runfile.ParseFile(childPath)
	require.NoError(t, err)
	s := settings.New(f.Directives)

	r, _, path, _, err := selectRecipe(f, s, childPath, "deploy")
	require.NoError(t, err)
	assert.Equal(t, "deploy", r.Name)
	assert.Equal(t, filepath.Join(root, RunfileName), path)
}

func TestSelectRecipeNoFallback(t *testing.T) {
	root := t.TempDir()
	writeRunfile(t, root, "deploy:\n\techo deploying\n")
	child := filepath.Join(root, "svc")
	require.NoError(t, os.MkdirAll(child, 0o755))
	childPath := writeRunfile(t, child, "build:\n\techo building\n")

	f, err := runfile.ParseFile(childPath)
	require.NoError(t, err)

	_, _, _, _, err = selectRecipe(f, settings.New(f.Directives), childPath, "deploy")
	assert.Error(t, err, "without the fallback setting, parent Runfiles are not searched")
}

func newRunTestExecutor(t *testing.T, s *settings.Settings) (*executor.Executor, *bytes.Buffer) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests drive the default POSIX shell")
	}

	command, args := s.ShellCommand(settings.Overrides{})
	var stdout bytes.Buffer
	return &executor.Executor{
		Shell:     command,
		ShellArgs: args,
		Dir:       t.TempDir(),
		Settings:  s,
		Stdout:    &stdout,
	}, &stdout
}

func TestRunWithDependencies(t *testing.T) {
	f, err := runfile.Parse([]byte(`
all: build test
	@echo all

build:
	@echo build

test: build
	@echo test
`))
	require.NoError(t, err)

	e, stdout := newRunTestExecutor(t, settings.New(f.Directives))
	err = runWithDependencies(context.Background(), e, f, f.Recipe("all"), nil, map[string]int{})
	require.NoError(t, err)

	// build runs once even though two recipes depend on it.
	assert.Equal(t, "build\ntest\nall\n", stdout.String())
}

func TestRunWithDependenciesCycle(t *testing.T) {
	f, err := runfile.Parse([]byte("a: b\n\t@echo a\nb: a\n\t@echo b\n"))
	require.NoError(t, err)

	e, _ := newRunTestExecutor(t, settings.New(f.Directives))
	err = runWithDependencies(context.Background(), e, f, f.Recipe("a"), nil, map[string]int{})
	assert.ErrorContains(t, err, "depends on itself")
}

func TestRunWithDependenciesMissingDep(t *testing.T) {
	f, err := runfile.Parse([]byte("a: ghost\n\t@echo a\n"))
	require.NoError(t, err)

	e, _ := newRunTestExecutor(t, settings.New(f.Directives))
	err = runWithDependencies(context.Background(), e, f, f.Recipe("a"), nil, map[string]int{})
	assert.ErrorContains(t, err, "not defined")
}

func TestPrintRecipes(t *testing.T) {
	f, err := runfile.Parse([]byte("# compile everything\nbuild:\n\techo hi\ntest: build\n\techo t\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	printRecipes(&buf, f)

	out := buf.String()
	assert.Contains(t, out, "Available recipes:")
	assert.Contains(t, out, "build")
	assert.Contains(t, out, "compile everything")
	assert.Contains(t, out, "test")
}
