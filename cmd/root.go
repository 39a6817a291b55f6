package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/josephlewis42/treesh/core/config"
	"github.com/josephlewis42/treesh/core/interp"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	debug   bool
)

// loadConfig reads the configuration at cfgPath, using the built-in defaults
// when there is none.
func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		if debug {
			log.Println("Couldn't load config, using defaults: did you run init?")
		}
		return config.Default(), nil
	}

	return configuration, err
}

// loadExistingConfig is like loadConfig but requires the file to exist.
func loadExistingConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// newCmdLogger logs to the command's stderr.
func newCmdLogger(cmd *cobra.Command, prefix string) *log.Logger {
	return log.New(cmd.ErrOrStderr(), prefix, 0)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "treesh [SCRIPT]",
	Short: "A small command interpreter",
	Long: `treesh runs simple commands, two-stage pipelines, sequences and
background jobs read from a terminal, a script, a -c string or standard input.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	RunE:          runE,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(exitCode(rootCmd.Execute()))
}

// exitCode reports the process status for the result of a command, printing
// anything that isn't a plain exit request.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *interp.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	fmt.Fprintf(os.Stderr, "treesh: %v\n", err)
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "trace execution to stderr")
	addRunFlags(rootCmd)
}
