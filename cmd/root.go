// Package cmd implements the bcf2 CLI: a thin driver over the codec
// core, used to inspect and validate BCF2 streams from the command
// line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	logLevel string
	logFile  string
)

var RootCmd = &cobra.Command{
	Use:   "bcf2",
	Short: "Inspect and validate BCF2 variant-call streams",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: verbose, debug, info, warn")
	RootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "optional filepath to additionally write logs to")
}

// Execute runs the root command, exiting non-zero on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bcf2: %s\n", err)
		os.Exit(1)
	}
}
