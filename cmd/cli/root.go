// Package cli implements the ueba-admin command line tool for training and
// baseline building.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ueba-admin",
	Short: "Administrative tool for the UEBA scoring service",
	Long: `ueba-admin trains the model artifacts the scoring service loads at
startup: the isolation forest, the Markov transition model, and the per-user
behavioral baselines.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
