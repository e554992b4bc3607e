// Package scanner runs the probe pipeline and tracks scan lifecycles.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/websectester/websectester/internal/metrics"
	"github.com/websectester/websectester/internal/report"
)

var (
	// ErrScanNotFound means the id matches neither an active scan nor a
	// history entry.
	ErrScanNotFound = errors.New("scan not found")

	// ErrNoModules means the requested selection would run nothing.
	ErrNoModules = errors.New("no scan modules selected")
)

// Options wires the probe modules and stores into an Orchestrator. Recon
// and Vulnerabilities are required; Browser, Burp and History may be nil,
// which disables the matching stage or persistence.
type Options struct {
	Logger          hclog.Logger
	Recon           Module
	Vulnerabilities Module
	Browser         BrowserModule
	Burp            ProxyAnalyzer
	History         HistoryStore
}

// Orchestrator owns the scan registry. Each scan runs on its own goroutine
// and is the only writer of its record; the registry mutex covers every
// record access so readers always see a consistent snapshot.
type Orchestrator struct {
	log     hclog.Logger
	recon   Module
	vulns   Module
	browser BrowserModule
	burp    ProxyAnalyzer
	history HistoryStore

	mu     sync.RWMutex
	active map[string]*Record
}

func New(opts Options) *Orchestrator {
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Orchestrator{
		log:     log,
		recon:   opts.Recon,
		vulns:   opts.Vulnerabilities,
		browser: opts.Browser,
		burp:    opts.Burp,
		history: opts.History,
		active:  make(map[string]*Record),
	}
}

// selection is the resolved plan for one scan. proxy is independent of the
// burp analysis stage: traffic routes through the interceptor whenever the
// caller enables it, even when the burp stage itself is not selected.
type selection struct {
	recon   bool
	vulns   bool
	browser bool
	burp    bool
	proxy   bool
}

func (s selection) empty() bool {
	return !s.recon && !s.vulns && !s.browser && !s.burp
}

func resolveSelection(scanTypes []string, useBurp, useBrowser bool) (selection, error) {
	picked := func(tag string) bool {
		for _, t := range scanTypes {
			if t == tag || t == ModuleAll {
				return true
			}
		}
		return false
	}

	for _, t := range scanTypes {
		if !ValidModule(t) {
			return selection{}, fmt.Errorf("unknown scan module %q", t)
		}
	}

	return selection{
		recon:   picked(ModuleRecon),
		vulns:   picked(ModuleVulnerabilities),
		browser: useBrowser && picked(ModuleBrowser),
		burp:    useBurp && picked(ModuleBurp),
		proxy:   useBurp,
	}, nil
}

// Submit validates the request, registers a running record and starts the
// pipeline in the background. It returns the new scan id immediately.
func (o *Orchestrator) Submit(targetURL string, scanTypes []string, useBurp, useBrowser bool) (string, error) {
	// Only an empty target is rejected here. A malformed URL still runs:
	// the probe modules convert the transport failure into findings.
	if targetURL == "" {
		return "", errors.New("target URL is required")
	}

	if len(scanTypes) == 0 {
		scanTypes = []string{ModuleAll}
	}
	sel, err := resolveSelection(scanTypes, useBurp, useBrowser)
	if err != nil {
		return "", err
	}

	// Availability counts toward the effective set: a scan whose only stage
	// is an unavailable browser would complete having done nothing.
	effective := sel
	if effective.browser && (o.browser == nil || !o.browser.Available()) {
		effective.browser = false
	}
	if o.recon == nil {
		effective.recon = false
	}
	if o.vulns == nil {
		effective.vulns = false
	}
	if o.burp == nil {
		effective.burp = false
	}
	if effective.empty() {
		return "", ErrNoModules
	}

	rec := &Record{
		ScanID:     uuid.NewString(),
		TargetURL:  targetURL,
		Status:     StatusRunning,
		StartTime:  timestamp(),
		ScanTypes:  append([]string(nil), scanTypes...),
		Findings:   []report.Finding{},
		LastUpdate: timestamp(),
	}

	o.mu.Lock()
	o.active[rec.ScanID] = rec
	o.mu.Unlock()

	metrics.ScansStarted.Inc()
	o.log.Info("scan submitted", "scan_id", rec.ScanID, "target", targetURL, "modules", scanTypes)

	go o.run(rec.ScanID, sel)

	return rec.ScanID, nil
}

// Status returns a snapshot of the scan, consulting history for records
// that outlived the process.
func (o *Orchestrator) Status(scanID string) (Record, error) {
	o.mu.RLock()
	rec, ok := o.active[scanID]
	if ok {
		snap := rec.Clone()
		o.mu.RUnlock()
		return snap, nil
	}
	o.mu.RUnlock()

	if o.history != nil {
		if rec, ok := o.history.Find(scanID); ok {
			return rec, nil
		}
	}
	return Record{}, ErrScanNotFound
}

// History returns all persisted scan records in completion order.
func (o *Orchestrator) History() []Record {
	if o.history == nil {
		return nil
	}
	return o.history.All()
}

func (o *Orchestrator) run(scanID string, sel selection) {
	defer func() {
		if p := recover(); p != nil {
			o.log.Error("scan aborted", "scan_id", scanID, "panic", p)
			metrics.ScansFailed.Inc()
			o.mu.Lock()
			if rec, ok := o.active[scanID]; ok {
				rec.Status = StatusError
				rec.Error = fmt.Sprint(p)
				rec.EndTime = timestamp()
				rec.LastUpdate = timestamp()
			}
			o.mu.Unlock()
		}
	}()

	ctx := context.Background()

	// The proxy address is resolved once so every stage routes through the
	// same interceptor.
	proxyURL := ""
	if sel.proxy && o.burp != nil {
		proxyURL = o.burp.ProxyURL()
	}

	var findings []report.Finding

	if sel.recon && o.recon != nil {
		o.setProgress(scanID, "Performing reconnaissance...")
		findings = append(findings, o.runStage(scanID, o.recon.Name(), func() []report.Finding {
			return o.recon.Scan(ctx, o.target(scanID), proxyURL)
		})...)
	}

	if sel.vulns && o.vulns != nil {
		o.setProgress(scanID, "Scanning for vulnerabilities...")
		findings = append(findings, o.runStage(scanID, o.vulns.Name(), func() []report.Finding {
			return o.vulns.Scan(ctx, o.target(scanID), proxyURL)
		})...)
	}

	if sel.browser {
		if o.browser != nil && o.browser.Available() {
			o.setProgress(scanID, "Running browser automation tests...")
			findings = append(findings, o.runStage(scanID, o.browser.Name(), func() []report.Finding {
				return o.browser.Scan(ctx, o.target(scanID), proxyURL)
			})...)
		} else {
			// The exclusion stays observable whether the module is
			// disabled by configuration or no browser binary exists.
			findings = append(findings, report.Finding{
				Category:    "browser",
				Severity:    report.SeverityInfo,
				Title:       "Browser Automation Unavailable",
				Description: "No usable browser installation was found, so browser checks were skipped.",
				Remediation: "Install Chrome or Chromium, or set the chrome_path configuration option.",
			})
		}
	}

	if sel.burp && o.burp != nil {
		o.setProgress(scanID, "Analyzing through Burp Suite...")
		findings = append(findings, o.runStage(scanID, "burp", func() []report.Finding {
			return o.burp.Analyze(ctx, scanID)
		})...)
	}

	o.finish(scanID, findings)
}

// runStage isolates one probe module: a panic becomes a finding and the
// pipeline keeps going.
func (o *Orchestrator) runStage(scanID, name string, fn func() []report.Finding) (out []report.Finding) {
	defer func() {
		if p := recover(); p != nil {
			o.log.Error("probe module panicked", "scan_id", scanID, "module", name, "panic", p)
			metrics.ModulePanics.Inc()
			out = []report.Finding{{
				Category:    "error",
				Severity:    report.SeverityInfo,
				Title:       fmt.Sprintf("%s Module Failed", name),
				Description: fmt.Sprintf("The %s module stopped unexpectedly: %v", name, p),
				Remediation: "Re-run the scan; if the failure persists, inspect the scanner logs.",
			}}
		}
	}()
	return fn()
}

func (o *Orchestrator) finish(scanID string, findings []report.Finding) {
	stats := report.ComputeStats(findings)
	for _, f := range findings {
		metrics.FindingsTotal.WithLabelValues(string(f.Severity.Normalize())).Inc()
	}

	o.mu.Lock()
	rec, ok := o.active[scanID]
	if !ok {
		o.mu.Unlock()
		return
	}
	rec.Findings = findings
	rec.Stats = stats
	rec.Status = StatusCompleted
	rec.CurrentMessage = "Scan completed"
	rec.EndTime = timestamp()
	rec.LastUpdate = timestamp()
	snap := rec.Clone()
	o.mu.Unlock()

	metrics.ScansCompleted.Inc()
	o.log.Info("scan completed", "scan_id", scanID,
		"findings", len(findings), "vulnerabilities", stats.VulnerabilitiesFound)

	// History writes never fail a completed scan.
	if o.history != nil {
		if err := o.history.Append(snap); err != nil {
			metrics.PersistenceFailures.Inc()
			o.log.Warn("history persistence failed", "scan_id", scanID, "error", err)
		}
	}
}

func (o *Orchestrator) setProgress(scanID, message string) {
	o.mu.Lock()
	if rec, ok := o.active[scanID]; ok {
		rec.CurrentMessage = message
		rec.LastUpdate = timestamp()
	}
	o.mu.Unlock()
	o.log.Debug("scan progress", "scan_id", scanID, "message", message)
}

func (o *Orchestrator) target(scanID string) string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if rec, ok := o.active[scanID]; ok {
		return rec.TargetURL
	}
	return ""
}
