package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/josephlewis42/treesh/core/interp"
	"github.com/spf13/cobra"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands the interpreter runs itself.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		for _, name := range interp.BuiltinNames() {
			builtin := interp.AllBuiltins[name]
			fmt.Fprintf(w, "%s\t%s\n", builtin.Use, builtin.Short)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
