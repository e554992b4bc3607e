package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/websectester/websectester/internal/ui"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past scans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		records := app.orchestrator.History()

		if historyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		if len(records) == 0 {
			fmt.Println("No scans recorded yet.")
			return nil
		}

		for _, rec := range records {
			fmt.Printf("%s%s%s  %s  %s  %d findings (%d vulnerabilities)\n",
				ui.ColorWhite, rec.ScanID, ui.ColorReset,
				rec.StartTime, rec.TargetURL,
				len(rec.Findings), rec.Stats.VulnerabilitiesFound)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output history as JSON")
	rootCmd.AddCommand(historyCmd)
}
