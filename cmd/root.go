// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bugcount-report",
	Short: "A CLI tool to count web-compatibility bugs per website.",
	Long: `bugcount-report reads a list of websites and counts, for each one, the
Bugzilla bugs and webcompat.com issues that affect it: fresh bugs, open and
severity-critical web-bugs issues, issues needing diagnosis, and bugs whose
webcompat report was closed as a duplicate.

The result is written as a CSV file named after the start time of the run.`,
	Args: cobra.NoArgs,
	Run:  runReport,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
