package cmd

import (
	"github.com/spf13/cobra"

	"github.com/websectester/websectester/internal/server"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scan API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		addr := serveListen
		if addr == "" {
			addr = app.cfg.ListenAddr
		}

		srv := server.New(app.log, app.orchestrator, app.reports)
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (overrides configuration)")
	rootCmd.AddCommand(serveCmd)
}
