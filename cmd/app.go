package cmd

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/websectester/websectester/internal/browser"
	"github.com/websectester/websectester/internal/burp"
	"github.com/websectester/websectester/internal/config"
	"github.com/websectester/websectester/internal/history"
	"github.com/websectester/websectester/internal/recon"
	"github.com/websectester/websectester/internal/reportgen"
	"github.com/websectester/websectester/internal/scanner"
	"github.com/websectester/websectester/internal/vulnscan"
)

// app is the fully wired scanner built from configuration. Every command
// goes through here so the CLI and the API server share the same pipeline.
type app struct {
	cfg          *config.Config
	log          hclog.Logger
	orchestrator *scanner.Orchestrator
	reports      *reportgen.Generator
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log := hclog.New(&hclog.LoggerOptions{
		Name:  "websectester",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})

	store, err := history.Open(cfg.HistoryFile)
	if err != nil {
		return nil, fmt.Errorf("open scan history: %w", err)
	}

	burpClient := burp.New(burp.Config{
		ProxyHost: cfg.ProxyHost,
		ProxyPort: cfg.ProxyPort,
		APIURL:    cfg.BurpAPIURL,
		APIKey:    cfg.BurpAPIKey,
	})

	opts := scanner.Options{
		Logger:          log,
		Recon:           recon.New(cfg.ReconTimeout),
		Vulnerabilities: vulnscan.New(cfg.ReconTimeout),
		Burp:            burpClient,
		History:         store,
	}

	var browserScanner *browser.Scanner
	if cfg.BrowserEnabled {
		browserScanner = browser.New(cfg.ChromePath)
		opts.Browser = browserScanner
	}

	orch := scanner.New(opts)

	return &app{
		cfg:          cfg,
		log:          log,
		orchestrator: orch,
		reports:      reportgen.New(orch, cfg.ReportsDir),
	}, nil
}
