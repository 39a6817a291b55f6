package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/josephlewis42/treesh/core/logger"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the execution event log.",
}

var reportCommand = &cobra.Command{
	Use:   "report [LOG]",
	Short: "Summarize commands, pipelines and background jobs in an event log.",
	Long: `Reads the configured event log, or LOG if given, and prints a YAML
summary of the commands run, the names not found, background jobs and fatal
errors.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		fd, err := openEventLog(args)
		if err != nil {
			return err
		}
		defer fd.Close()

		var report logger.Report
		if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
			return err
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// openEventLog opens the log named in args, falling back to the one in the
// configuration.
func openEventLog(args []string) (io.ReadCloser, error) {
	if len(args) == 1 {
		return os.Open(args[0])
	}

	cfg, err := loadExistingConfig()
	if err != nil {
		return nil, err
	}
	return cfg.ReadEventLog()
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
}
