// Package vulnscan runs HTTP-level vulnerability heuristics against the
// target. Every check is fault-isolated: a failing check degrades to an
// informational finding and the remaining checks still run.
package vulnscan

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/websectester/websectester/internal/engine"
	"github.com/websectester/websectester/internal/report"
)

const maxBodyBytes = 2 << 20

// pageContext carries the fetched target page shared by all checks.
type pageContext struct {
	ctx      context.Context
	target   *url.URL
	response *http.Response
	body     []byte
	client   *http.Client
}

type check struct {
	Name string
	Run  func(*pageContext) []report.Finding
}

var catalog = []check{
	{"CORS Policy", checkCORSPolicy},
	{"Cookie Attributes", checkCookieFlags},
	{"Information Leakage", checkInformationLeakage},
	{"Reflected Parameters", checkReflectedParams},
	{"Open Redirect", checkOpenRedirect},
	{"Sensitive Paths", checkSensitivePaths},
}

type Scanner struct {
	Timeout time.Duration
}

func New(timeout time.Duration) *Scanner {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scanner{Timeout: timeout}
}

func (s *Scanner) Name() string { return "vulnerabilities" }

// Scan fetches the target once and runs the check catalog over it.
func (s *Scanner) Scan(ctx context.Context, target, proxyURL string) []report.Finding {
	client := engine.NewHTTPClient(s.Timeout, proxyURL)

	parsed, err := url.Parse(target)
	if err != nil {
		return []report.Finding{probeFailure(err)}
	}

	req, err := engine.NewRequest(ctx, target)
	if err != nil {
		return []report.Finding{probeFailure(err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return []report.Finding{probeFailure(err)}
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()

	pc := &pageContext{
		ctx:      ctx,
		target:   parsed,
		response: resp,
		body:     body,
		client:   client,
	}

	var findings []report.Finding
	for _, c := range catalog {
		findings = append(findings, runCheck(c, pc)...)
	}
	return findings
}

// runCheck isolates a single check so a panic inside it cannot take down
// the rest of the catalog.
func runCheck(c check, pc *pageContext) (findings []report.Finding) {
	defer func() {
		if r := recover(); r != nil {
			findings = []report.Finding{{
				Category:    "info",
				Severity:    report.SeverityInfo,
				Title:       fmt.Sprintf("%s Check Incomplete", c.Name),
				Description: fmt.Sprintf("Could not complete %s check: %v", c.Name, r),
			}}
		}
	}()
	return c.Run(pc)
}

func probeFailure(err error) report.Finding {
	return report.Finding{
		Category:    "error",
		Severity:    report.SeverityHigh,
		Title:       "Vulnerability Probe Failed",
		Description: fmt.Sprintf("Could not fetch target for vulnerability checks: %v", err),
	}
}
