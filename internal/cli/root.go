// Package cli implements the HabitFlow command-line interface using Cobra.
// Each subcommand maps to one store operation (add, done, edit, rm, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/habitflow/habitflow/internal/daemon"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "habitflow",
	Short: "HabitFlow: track habits, dailies and todos",
	Long: `HabitFlow is a local-first habit tracker.
Complete tasks to build streaks, earn points and unlock rewards.

Run 'habitflow serve' for the HTTP API or use the commands below directly
against the local data directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log store activity to stderr")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version
	daemon.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
