package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lockllm/lockllm-go/pkg/proxy"
)

var proxyURLFlags struct {
	baseURL string
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported proxy providers",
	Long:  `List every provider the gateway can proxy to, with its endpoint.`,
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range proxy.Providers() {
			url, _ := proxy.URLWithBase(proxyURLFlags.baseURL, p)
			fmt.Printf("%-14s %s\n", p, url)
		}
		fmt.Printf("%-14s %s\n", "(universal)", proxy.UniversalURLWithBase(proxyURLFlags.baseURL))
	},
}

var proxyURLCmd = &cobra.Command{
	Use:   "proxy-url <provider>",
	Short: "Print the proxy endpoint for a provider",
	Long: `Print the gateway endpoint that proxies to the given provider.

Point your provider SDK's base URL at this endpoint to route requests
through the gateway.

Examples:
  lockllm proxy-url openai
  lockllm proxy-url anthropic --base-url https://gateway.internal`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := proxy.URLWithBase(proxyURLFlags.baseURL, proxy.ProviderName(args[0]))
		if err != nil {
			return err
		}
		fmt.Println(url)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(proxyURLCmd)

	providersCmd.Flags().StringVar(&proxyURLFlags.baseURL, "base-url", proxy.DefaultBaseURL, "gateway base URL")
	proxyURLCmd.Flags().StringVar(&proxyURLFlags.baseURL, "base-url", proxy.DefaultBaseURL, "gateway base URL")
}
