package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lockllm/lockllm-go/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "lockllm",
	Short: "LockLLM - AI security gateway client",
	Long: `LockLLM scans LLM prompts for security threats before they reach a model.

The gateway detects:
  - Prompt injection and jailbreak attempts
  - Custom policy violations
  - Abuse patterns
  - PII exposure

This CLI scans individual prompts, prints proxy endpoints for supported
providers, and inspects the local audit trail.

For more information, visit: https://lockllm.com`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
