package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/taskrun/internal/config"
	"github.com/runger/taskrun/internal/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [recipe-prefix]",
	Short: "Show recent recipe runs",
	Long: `Show recent recipe runs from the local history database.

Without arguments, shows the most recent runs. With an argument,
filters runs whose recipe name matches the prefix.

Examples:
  taskrun history              # Show last 20 runs
  taskrun history --limit=50   # Show last 50 runs
  taskrun history dep          # Show runs of recipes starting with "dep"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dbPath := cfg.History.DBPath
	if dbPath == "" {
		dbPath = config.DefaultPaths().DatabaseFile()
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "No history available (database at %s)\n", dbPath)
		return nil
	}
	defer store.Close()

	q := storage.RunQuery{Limit: historyLimit}
	if len(args) > 0 {
		q.RecipePrefix = args[0]
	}
	runs, err := store.QueryRuns(cmd.Context(), q)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, r := range runs {
		ts := time.UnixMilli(r.TsUnixMs).Format("2006-01-02 15:04:05")
		status := fmt.Sprintf("%sok%s", colorDim, colorReset)
		if r.ExitCode != 0 {
			status = fmt.Sprintf("%sexit %d%s", colorRed, r.ExitCode, colorReset)
		}
		fmt.Fprintf(out, "%s  %s%-20s%s %-8s %6dms  %s %s\n",
			ts,
			colorCyan, r.Recipe, colorReset,
			status,
			r.DurationMs,
			r.Shell,
			strings.Join(r.ShellArgs, " "),
		)
	}
	return nil
}
