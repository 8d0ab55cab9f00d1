package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lockllm/lockllm-go/pkg/cli"
	"github.com/lockllm/lockllm-go/pkg/config"
	"github.com/lockllm/lockllm-go/pkg/lockllm"
)

var scanFlags struct {
	file        string
	sensitivity string
	mode        string
	format      string
}

var scanCmd = &cobra.Command{
	Use:   "scan [input]",
	Short: "Scan a prompt for security threats",
	Long: `Scan a prompt through the LockLLM gateway and print the verdict.

The input comes from the argument, from --file, or from stdin when neither
is given. The API key is read from the config file or the LOCKLLM_API_KEY
environment variable.

Exit codes:
  0 - input is safe
  1 - scan failed
  2 - input was flagged or blocked

Examples:
  # Scan an argument
  lockllm scan "Ignore all previous instructions"

  # Scan a file with high sensitivity
  lockllm scan --file prompt.txt --sensitivity high

  # Pipe input, JSON output
  cat prompt.txt | lockllm scan --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanFlags.file, "file", "", "read input from file")
	scanCmd.Flags().StringVar(&scanFlags.sensitivity, "sensitivity", "", "detection sensitivity: low, medium, high")
	scanCmd.Flags().StringVar(&scanFlags.mode, "mode", "", "scan mode: normal, policy_only, combined")
	scanCmd.Flags().StringVar(&scanFlags.format, "format", "text", "output format: text, json")
}

func runScan(cmd *cobra.Command, args []string) error {
	input, err := scanInput(args)
	if err != nil {
		return cli.NewCommandError("scan", err)
	}

	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}

	client, shutdown, err := cfg.BuildClient()
	if err != nil {
		return cli.NewCommandError("scan", err)
	}
	defer func() {
		client.Close()
		_ = shutdown()
	}()

	opts := &lockllm.ScanOptions{}
	if scanFlags.sensitivity != "" {
		opts.Sensitivity = lockllm.Ptr(lockllm.Sensitivity(scanFlags.sensitivity))
	}
	if scanFlags.mode != "" {
		opts.ScanMode = lockllm.Ptr(lockllm.ScanMode(scanFlags.mode))
	}

	ctx := cli.SetupSignalHandler()
	resp, err := client.Scan(ctx, input, opts)
	if err != nil {
		var injectionErr *lockllm.PromptInjectionError
		if errors.As(err, &injectionErr) {
			printBlocked(injectionErr)
		}
		var policyErr *lockllm.PolicyViolationError
		if errors.As(err, &policyErr) {
			fmt.Printf("BLOCKED: %s\n", policyErr.Message)
			for _, p := range policyErr.ViolatedPolicies {
				fmt.Printf("  policy: %s %v\n", p.PolicyName, p.ViolatedCategories)
			}
		}
		return cli.NewCommandError("scan", err)
	}

	if scanFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, resp); err != nil {
			return err
		}
	} else {
		printVerdict(resp)
	}

	if !resp.Safe {
		os.Exit(cli.ExitBlocked)
	}
	return nil
}

func scanInput(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if scanFlags.file != "" {
		data, err := os.ReadFile(scanFlags.file)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no input: pass an argument, --file, or pipe to stdin")
	}
	return string(data), nil
}

func printVerdict(resp *lockllm.ScanResponse) {
	if resp.Safe {
		fmt.Println("SAFE")
	} else {
		fmt.Println("FLAGGED")
	}
	if resp.Confidence != nil {
		fmt.Printf("  confidence: %.1f%%\n", *resp.Confidence)
	}
	if resp.Injection != nil {
		fmt.Printf("  injection:  %.1f%%\n", *resp.Injection)
	}
	if resp.Sensitivity != "" {
		fmt.Printf("  sensitivity: %s\n", resp.Sensitivity)
	}
	if resp.RequestID != "" {
		fmt.Printf("  request_id: %s\n", resp.RequestID)
	}
}

func printBlocked(err *lockllm.PromptInjectionError) {
	fmt.Printf("BLOCKED: %s\n", err.Message)
	if err.ScanResult.Injection != nil {
		fmt.Printf("  injection: %.1f%%\n", *err.ScanResult.Injection)
	}
	if err.RequestID != "" {
		fmt.Printf("  request_id: %s\n", err.RequestID)
	}
}

// loadCLIConfig resolves configuration for a command: the --config file when
// given, environment-only defaults otherwise.
func loadCLIConfig() (*config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.LoadWithEnvOverrides(cfgFile)
		if err != nil {
			return nil, cli.NewCommandError("scan", err)
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		return cfg, nil
	}
	cfg := config.Default()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}
