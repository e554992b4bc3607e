package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/websectester/websectester/internal/report"
	"github.com/websectester/websectester/internal/scanner"
	"github.com/websectester/websectester/internal/ui"
)

var (
	scanModules    string
	scanUseBurp    bool
	scanNoBrowser  bool
	scanSkipPrompt bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [target_url]",
	Short: "Run a one-shot scan against a target and print the findings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]

		if !scanSkipPrompt {
			ok, err := ui.Confirm(fmt.Sprintf("You are about to scan %s. Only scan assets you are authorized to test. Continue?", target))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Scan cancelled.")
				return nil
			}
		}

		app, err := newApp()
		if err != nil {
			return err
		}

		modules := []string{scanner.ModuleAll}
		if scanModules != "" {
			modules = strings.Split(scanModules, ",")
			for i := range modules {
				modules[i] = strings.TrimSpace(modules[i])
			}
		}

		scanID, err := app.orchestrator.Submit(target, modules, scanUseBurp, !scanNoBrowser)
		if err != nil {
			return err
		}
		fmt.Printf("Scan started: %s\n", scanID)

		rec, err := pollScan(app, scanID)
		if err != nil {
			return err
		}

		printRecord(rec)
		if rec.Status == scanner.StatusError {
			fmt.Printf("%sScan failed: %s%s\n", ui.ColorRed, rec.Error, ui.ColorReset)
			os.Exit(1)
		}
		return nil
	},
}

func pollScan(app *app, scanID string) (scanner.Record, error) {
	lastMessage := ""
	for {
		rec, err := app.orchestrator.Status(scanID)
		if err != nil {
			return scanner.Record{}, err
		}
		if rec.CurrentMessage != "" && rec.CurrentMessage != lastMessage {
			fmt.Printf("%s%s%s\n", ui.ColorGray, rec.CurrentMessage, ui.ColorReset)
			lastMessage = rec.CurrentMessage
		}
		if rec.Status != scanner.StatusRunning {
			return rec, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func printRecord(rec scanner.Record) {
	fmt.Println()
	fmt.Printf("%sTarget:%s %s\n", ui.ColorWhite, ui.ColorReset, rec.TargetURL)
	fmt.Printf("%sStatus:%s %s\n", ui.ColorWhite, ui.ColorReset, rec.Status)
	fmt.Printf("%sFindings:%s %d total, %d vulnerabilities\n\n",
		ui.ColorWhite, ui.ColorReset, len(rec.Findings), rec.Stats.VulnerabilitiesFound)

	for _, f := range report.SortBySeverity(rec.Findings) {
		severity := f.Severity.Normalize()
		color := ui.SeverityColor(severity)
		fmt.Printf("%s[%s]%s %s\n", color, strings.ToUpper(string(severity)), ui.ColorReset, f.Title)
		if f.Description != "" {
			fmt.Printf("    %s\n", f.Description)
		}
		if f.Remediation != "" {
			fmt.Printf("    %sRemediation:%s %s\n", ui.ColorGreen, ui.ColorReset, f.Remediation)
		}
	}

	fmt.Println()
	fmt.Printf("Critical: %d  High: %d  Medium: %d  Low: %d  Info: %d\n",
		rec.Stats.Critical, rec.Stats.High, rec.Stats.Medium, rec.Stats.Low, rec.Stats.Info)
}

func init() {
	scanCmd.Flags().StringVar(&scanModules, "modules", "", "Comma-separated modules to run: recon,vulnerabilities,browser,burp (default: all)")
	scanCmd.Flags().BoolVar(&scanUseBurp, "burp", false, "Route traffic through the Burp proxy and collect its issues")
	scanCmd.Flags().BoolVar(&scanNoBrowser, "no-browser", false, "Skip the headless browser stage")
	scanCmd.Flags().BoolVarP(&scanSkipPrompt, "yes", "y", false, "Skip the authorization prompt")
	rootCmd.AddCommand(scanCmd)
}
