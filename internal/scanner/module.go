package scanner

import (
	"context"

	"github.com/websectester/websectester/internal/report"
)

// Module selector tags accepted by Submit.
const (
	ModuleRecon           = "recon"
	ModuleVulnerabilities = "vulnerabilities"
	ModuleBrowser         = "browser"
	ModuleBurp            = "burp"
	ModuleAll             = "all"
)

// Module is one probe stage of the pipeline. Implementations never return
// an error: anything that goes wrong inside a probe is reported as a
// finding so the remaining stages still run.
type Module interface {
	Name() string
	Scan(ctx context.Context, targetURL, proxyURL string) []report.Finding
}

// BrowserModule extends Module with an availability check. A browser stage
// that cannot launch is skipped, not failed.
type BrowserModule interface {
	Module
	Available() bool
}

// ProxyAnalyzer is the intercepting-proxy integration. It works on the
// scan id rather than the target because the proxy accumulated traffic
// during the earlier stages.
type ProxyAnalyzer interface {
	ProxyURL() string
	Analyze(ctx context.Context, scanID string) []report.Finding
}

// HistoryStore persists completed scan records.
type HistoryStore interface {
	Append(rec Record) error
	All() []Record
	Find(scanID string) (Record, bool)
}

// KnownModules lists every selectable module tag in pipeline order.
func KnownModules() []string {
	return []string{ModuleRecon, ModuleVulnerabilities, ModuleBrowser, ModuleBurp}
}

// ValidModule reports whether tag names a module or the all selector.
func ValidModule(tag string) bool {
	switch tag {
	case ModuleRecon, ModuleVulnerabilities, ModuleBrowser, ModuleBurp, ModuleAll:
		return true
	}
	return false
}
