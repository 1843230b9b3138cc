package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/taskrun/internal/runfile"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes in the nearest Runfile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := findRunfile(flagFile)
		if err != nil {
			return err
		}
		f, err := runfile.ParseFile(path)
		if err != nil {
			return err
		}
		printRecipes(cmd.OutOrStdout(), f)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Use this Runfile instead of searching upward")
}

func printRecipes(w io.Writer, f *runfile.Runfile) {
	fmt.Fprintln(w, "Available recipes:")
	for _, r := range f.Recipes {
		name := r.Name
		if len(r.Dependencies) > 0 {
			name += " " + colorDim + strings.Join(r.Dependencies, " ") + colorReset
		}
		if r.Doc != "" {
			fmt.Fprintf(w, "    %s%s%s %s# %s%s\n", colorCyan, name, colorReset, colorDim, r.Doc, colorReset)
		} else {
			fmt.Fprintf(w, "    %s%s%s\n", colorCyan, name, colorReset)
		}
	}
}

func echoLine(w io.Writer, line string) {
	fmt.Fprintf(w, "%s%s%s\n", colorBold, line, colorReset)
}
