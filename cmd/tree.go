package cmd

import (
	"io"

	"github.com/josephlewis42/treesh/core/ast"
	"github.com/josephlewis42/treesh/core/parser"
	"github.com/spf13/cobra"
)

// treeCmd parses without running
var treeCmd = &cobra.Command{
	Use:   "tree [SCRIPT]",
	Short: "Print the command tree a program parses to.",
	Long: `Parses a -c string, a script or standard input and prints the resulting
command tree without running anything.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dialect := parser.Dialect(cfg.Dialect)
		if dialectFlag != "" {
			dialect = parser.Dialect(dialectFlag)
		}

		src, ok, err := readSource(cmd, args)
		if err != nil {
			return err
		}
		if !ok {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			src = string(data)
		}

		node, err := parser.Parse(dialect, src)
		if err != nil {
			return err
		}
		return ast.Fprint(cmd.OutOrStdout(), node)
	},
}

func init() {
	addRunFlags(treeCmd)
	rootCmd.AddCommand(treeCmd)
}
