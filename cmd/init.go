package cmd

import (
	"github.com/josephlewis42/treesh/core/config"
	"github.com/spf13/cobra"
)

// initCmd writes the default configuration to the config path
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to the config path.",
	Long: `Writes config.yaml with the default prompt, search path, discard sink
and event log location. An existing config.yaml is left untouched.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		_, err := config.Initialize(cfgPath, newCmdLogger(cmd, ""))
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
