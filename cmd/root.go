package cmd

import (
	"os"

	"github.com/spf13/cobra"

	appver "github.com/websectester/websectester/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "websectester",
	Short: "WebSecTester is a modular web security scanner that runs reconnaissance, vulnerability, browser automation and proxy analysis probes against a target and aggregates the results into scored findings.",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = appver.Value
	rootCmd.SilenceUsage = true

	rootCmd.Long = `WebSecTester is a modular web application security scanner.

It runs four probe stages against a target: passive reconnaissance,
active vulnerability checks, headless browser analysis and an optional
Burp Suite proxy integration. Findings are aggregated into one scored
record that can be rendered as a PDF, HTML or JSON report.

Example:
  websectester scan https://example.com
  websectester scan https://example.com --modules recon,vulnerabilities
  websectester serve
  websectester history
  websectester report <scan-id> --format pdf

This tool is intended for ethical hacking and security testing on assets you own or have explicit permission to test.
`
}
