package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/runger/taskrun/internal/config"
	"github.com/runger/taskrun/internal/executor"
	"github.com/runger/taskrun/internal/logging"
	"github.com/runger/taskrun/internal/runfile"
	"github.com/runger/taskrun/internal/settings"
	"github.com/runger/taskrun/internal/storage"
)

// RunfileName is the file the runner searches for, from the working
// directory upward.
const RunfileName = "Runfile"

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	path, err := findRunfile(flagFile)
	if err != nil {
		return err
	}
	f, err := runfile.ParseFile(path)
	if err != nil {
		return err
	}
	s := settings.New(f.Directives)

	if flagList {
		printRecipes(cmd.OutOrStdout(), f)
		return nil
	}

	name := ""
	var recipeArgs []string
	if len(args) > 0 {
		name = args[0]
		recipeArgs = args[1:]
	}

	recipe, f, path, s, err := selectRecipe(f, s, path, name)
	if err != nil {
		return err
	}

	ov := settings.Overrides{
		Shell:   flagShell,
		Windows: runtime.GOOS == "windows",
	}
	if cmd.Flags().Changed("shell-arg") {
		ov.ShellArgs = flagShellArgs
		if ov.ShellArgs == nil {
			ov.ShellArgs = []string{}
		}
	}
	shell, shellArgs := s.ShellCommand(ov)
	logger.Debug("resolved shell", "shell", shell, "args", shellArgs)

	dir := filepath.Dir(path)
	env, err := executor.Environ(s, f.Assignments, dir)
	if err != nil {
		return err
	}

	e := &executor.Executor{
		Shell:     shell,
		ShellArgs: shellArgs,
		NoShell:   flagNoShell,
		Dir:       dir,
		Env:       env,
		Settings:  s,
		Logger:    logger,
		Stdin:     os.Stdin,
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
		Echo:      echoLine,
	}

	ctx := cmd.Context()
	start := time.Now()
	runErr := runWithDependencies(ctx, e, f, recipe, recipeArgs, map[string]int{})

	if cfg.History.Enabled && !flagNoHistory {
		exitCode := 0
		if runErr != nil {
			exitCode = executor.ExitCode(runErr)
		}
		recordHistory(ctx, cfg, logger, &storage.Run{
			RunID:      uuid.NewString(),
			TsUnixMs:   start.UnixMilli(),
			CWD:        dir,
			Runfile:    path,
			Recipe:     recipe.Name,
			Shell:      shell,
			ShellArgs:  shellArgs,
			ExitCode:   exitCode,
			DurationMs: time.Since(start).Milliseconds(),
		})
	}

	if runErr != nil {
		var lineErr *executor.LineError
		if errors.As(runErr, &lineErr) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%serror:%s %v\n", colorRed, colorReset, lineErr)
		}
	}
	return runErr
}

// findRunfile locates the Runfile: an explicit path wins, otherwise the
// nearest Runfile from the working directory upward.
func findRunfile(explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(abs); err != nil {
			return "", err
		}
		return abs, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if path, ok := findRunfileFrom(dir); ok {
		return path, nil
	}
	return "", fmt.Errorf("no %s found in %s or any parent directory", RunfileName, dir)
}

// findRunfileFrom searches dir and its parents for a Runfile.
func findRunfileFrom(dir string) (string, bool) {
	for {
		candidate := filepath.Join(dir, RunfileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// selectRecipe picks the recipe to run. An empty name selects the first
// recipe. When the recipe is missing and the fallback setting is on, the
// search continues with Runfiles in parent directories, as long as each
// visited file keeps fallback enabled.
func selectRecipe(f *runfile.Runfile, s *settings.Settings, path, name string) (*runfile.Recipe, *runfile.Runfile, string, *settings.Settings, error) {
	if name == "" {
		first := f.First()
		if first == nil {
			return nil, nil, "", nil, fmt.Errorf("%s contains no recipes", path)
		}
		return first, f, path, s, nil
	}

	for {
		if r := f.Recipe(name); r != nil {
			return r, f, path, s, nil
		}
		if !s.Fallback {
			return nil, nil, "", nil, fmt.Errorf("%s does not define recipe %q", path, name)
		}

		parent := filepath.Dir(filepath.Dir(path))
		next, ok := findRunfileFrom(parent)
		if !ok {
			return nil, nil, "", nil, fmt.Errorf("recipe %q not found in %s or any parent Runfile", name, path)
		}

		nf, err := runfile.ParseFile(next)
		if err != nil {
			return nil, nil, "", nil, err
		}
		f, path, s = nf, next, settings.New(nf.Directives)
	}
}

// Dependency traversal states.
const (
	recipeRunning = 1
	recipeDone    = 2
)

// runWithDependencies runs the recipe's dependencies first, each at most
// once, then the recipe itself. Dependencies run without arguments.
func runWithDependencies(ctx context.Context, e *executor.Executor, f *runfile.Runfile, r *runfile.Recipe, args []string, state map[string]int) error {
	switch state[r.Name] {
	case recipeRunning:
		return fmt.Errorf("recipe %q depends on itself", r.Name)
	case recipeDone:
		return nil
	}
	state[r.Name] = recipeRunning

	for _, dep := range r.Dependencies {
		d := f.Recipe(dep)
		if d == nil {
			return fmt.Errorf("recipe %q depends on %q, which is not defined", r.Name, dep)
		}
		if err := runWithDependencies(ctx, e, f, d, nil, state); err != nil {
			return err
		}
	}

	if err := e.RunRecipe(ctx, r, args); err != nil {
		return err
	}
	state[r.Name] = recipeDone
	return nil
}

// recordHistory stores the run record. History is best-effort: failures
// are logged, never surfaced.
func recordHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger, run *storage.Run) {
	dbPath := cfg.History.DBPath
	if dbPath == "" {
		dbPath = config.DefaultPaths().DatabaseFile()
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn("history disabled for this run", "error", err)
		return
	}
	defer store.Close()

	if err := store.RecordRun(ctx, run); err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	if _, err := store.PruneRuns(ctx, cfg.History.MaxEntries); err != nil {
		logger.Warn("failed to prune history", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	lc := logging.DefaultConfig()
	switch cfg.Log.Level {
	case "debug":
		lc.Level = slog.LevelDebug
	case "info":
		lc.Level = slog.LevelInfo
	case "error":
		lc.Level = slog.LevelError
	}
	lc.Debug = flagVerbose || os.Getenv("TASKRUN_DEBUG") == "1"
	return logging.New(lc)
}
