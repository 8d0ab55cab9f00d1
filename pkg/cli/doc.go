/*
Package cli provides command-line interface utilities for the lockllm
command.

The cli package includes output formatters, typed command errors, and
signal handling helpers.

Output Formatting:

Command results render as text, JSON, or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal Handling:

For cancelling in-flight scans on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	resp, err := client.Scan(ctx, input, nil)
*/
package cli
