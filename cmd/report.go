package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report [scan_id]",
	Short: "Generate a report for a past scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		path, err := app.reports.Generate(args[0], reportFormat)
		if err != nil {
			return err
		}

		fmt.Printf("Report written to %s\n", path)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "pdf", "Report format: pdf, html or json")
	rootCmd.AddCommand(reportCmd)
}
