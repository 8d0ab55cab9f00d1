package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lockllm/lockllm-go/pkg/cli"
	"github.com/lockllm/lockllm-go/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Parse and validate a configuration file without making any requests.

Examples:
  lockllm validate --config lockllm.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return cli.NewCommandError("validate", errors.New("no config file given (use --config)"))
		}
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return cli.NewCommandError("validate", err)
		}
		fmt.Printf("%s: OK\n", cfgFile)
		if verbose {
			fmt.Printf("  base_url:    %s\n", cfg.BaseURL)
			fmt.Printf("  timeout:     %s\n", cfg.Timeout)
			fmt.Printf("  max_retries: %d\n", cfg.MaxRetries)
			fmt.Printf("  audit:       %t\n", cfg.Audit.Enabled)
			fmt.Printf("  metrics:     %t\n", cfg.Metrics.Enabled)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
