package cmd

import (
	"github.com/spf13/cobra"
)

var (
	flagFile      string
	flagShell     string
	flagShellArgs []string
	flagNoShell   bool
	flagList      bool
	flagVerbose   bool
	flagNoHistory bool
)

var rootCmd = &cobra.Command{
	Use:   "taskrun [recipe [arguments...]]",
	Short: "a Runfile-driven command runner",
	Long: `taskrun - a Runfile-driven command runner

Runs recipes from the nearest Runfile. Without arguments, the first
recipe in the file runs. Shell selection follows the Runfile's settings
unless overridden with --shell / --shell-arg.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Use this Runfile instead of searching upward")
	rootCmd.Flags().StringVar(&flagShell, "shell", "", "Override the shell used to run recipe lines")
	rootCmd.Flags().StringArrayVar(&flagShellArgs, "shell-arg", nil, "Override shell arguments (repeatable)")
	rootCmd.Flags().BoolVar(&flagNoShell, "no-shell", false, "Run recipe lines directly without a shell")
	rootCmd.Flags().BoolVarP(&flagList, "list", "l", false, "List recipes instead of running")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "Do not record this run in the history database")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
