// Package burp integrates an external intercepting proxy and its REST API.
// The external tool is treated as unreliable infrastructure: every failure
// mode degrades to an informational finding instead of an error.
package burp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/websectester/websectester/internal/report"
)

// ErrAPINotConfigured is returned when an operation needs the remote API
// but no credentials were configured.
var ErrAPINotConfigured = errors.New("burp API not configured")

// defaultProbeURL is fetched through the proxy to test availability.
const defaultProbeURL = "http://httpbin.org/get"

type Config struct {
	ProxyHost string
	ProxyPort int

	// APIURL/APIKey enable the remote scan API. Both empty is valid: the
	// proxy alone can still be probed for availability.
	APIURL string
	APIKey string

	// ProbeURL overrides the availability probe target.
	ProbeURL string
}

type Client struct {
	cfg  Config
	rest *resty.Client
}

func New(cfg Config) *Client {
	if cfg.ProxyHost == "" {
		cfg.ProxyHost = "127.0.0.1"
	}
	if cfg.ProxyPort == 0 {
		cfg.ProxyPort = 8080
	}
	if cfg.ProbeURL == "" {
		cfg.ProbeURL = defaultProbeURL
	}

	rest := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(10 * time.Second)
	if cfg.APIKey != "" {
		rest.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &Client{cfg: cfg, rest: rest}
}

// ProxyURL returns the proxy address threaded to the other probe modules.
func (c *Client) ProxyURL() string {
	return fmt.Sprintf("http://%s:%d", c.cfg.ProxyHost, c.cfg.ProxyPort)
}

// APIConfigured reports whether remote API credentials are set.
func (c *Client) APIConfigured() bool {
	return c.cfg.APIURL != "" && c.cfg.APIKey != ""
}

// IsAvailable attempts one request through the proxy. Any transport failure
// means unavailable; it never returns an error.
func (c *Client) IsAvailable(ctx context.Context) bool {
	probe := resty.New().
		SetProxy(c.ProxyURL()).
		SetTimeout(5 * time.Second)

	_, err := probe.R().SetContext(ctx).Get(c.cfg.ProbeURL)
	return err == nil
}

// Issue is one issue record returned by the remote API.
type Issue struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Host        string `json:"host"`
	Path        string `json:"path"`
	Severity    string `json:"severity"`
	Confidence  string `json:"confidence"`
	Remediation string `json:"remediation"`
}

// Analyze queries the proxy and, when API credentials are configured, maps
// remote issues into findings.
func (c *Client) Analyze(ctx context.Context, scanID string) []report.Finding {
	proxyDetails := map[string]any{
		"proxy_host": c.cfg.ProxyHost,
		"proxy_port": c.cfg.ProxyPort,
	}

	if !c.IsAvailable(ctx) {
		return []report.Finding{{
			Category:    "burp",
			Severity:    report.SeverityInfo,
			Title:       "Burp Suite Proxy Not Available",
			Description: fmt.Sprintf("Could not connect to Burp proxy at %s:%d", c.cfg.ProxyHost, c.cfg.ProxyPort),
			Details:     proxyDetails,
			Remediation: "Ensure Burp Suite is running and proxy is configured correctly.",
		}}
	}

	findings := []report.Finding{{
		Category:    "burp",
		Severity:    report.SeverityInfo,
		Title:       "Burp Suite Proxy Connected",
		Description: fmt.Sprintf("Successfully connected to Burp proxy at %s:%d", c.cfg.ProxyHost, c.cfg.ProxyPort),
		Details:     proxyDetails,
	}}

	if c.APIConfigured() {
		findings = append(findings, c.fetchIssues(ctx, scanID)...)
	}

	return findings
}

// severityFromRemote translates the remote tool's severity vocabulary into
// the local taxonomy. Values outside the vocabulary collapse to info.
func severityFromRemote(severity string) report.Severity {
	switch severity {
	case "high":
		return report.SeverityHigh
	case "medium":
		return report.SeverityMedium
	case "low":
		return report.SeverityLow
	case "information":
		return report.SeverityInfo
	default:
		return report.SeverityInfo
	}
}

func (c *Client) fetchIssues(ctx context.Context, scanID string) []report.Finding {
	var issues []Issue
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&issues).
		Get(fmt.Sprintf("/scan/%s/issues", scanID))
	if err != nil {
		return []report.Finding{{
			Category:    "burp",
			Severity:    report.SeverityInfo,
			Title:       "Burp API Error",
			Description: fmt.Sprintf("Could not fetch results from Burp API: %v", err),
		}}
	}
	if resp.StatusCode() != http.StatusOK {
		return []report.Finding{{
			Category:    "burp",
			Severity:    report.SeverityInfo,
			Title:       "Burp API Response",
			Description: fmt.Sprintf("API returned status code: %d", resp.StatusCode()),
			Details:     map[string]any{"status_code": resp.StatusCode()},
		}}
	}

	findings := make([]report.Finding, 0, len(issues))
	for _, issue := range issues {
		title := issue.Name
		if title == "" {
			title = "Burp Issue"
		}
		description := issue.Description
		if description == "" {
			description = "No description available"
		}
		remediation := issue.Remediation
		if remediation == "" {
			remediation = "See Burp Suite documentation for remediation advice."
		}
		issueType := issue.Type
		if issueType == "" {
			issueType = "unknown"
		}
		confidence := issue.Confidence
		if confidence == "" {
			confidence = "unknown"
		}

		findings = append(findings, report.Finding{
			Category:    "burp_issue",
			Severity:    severityFromRemote(issue.Severity),
			Title:       title,
			Description: description,
			Details: map[string]any{
				"issue_type": issueType,
				"host":       issue.Host,
				"path":       issue.Path,
				"confidence": confidence,
			},
			Remediation: remediation,
		})
	}
	return findings
}

// StartResult reports a remotely initiated scan.
type StartResult struct {
	ScanID  string `json:"scan_id"`
	Message string `json:"message"`
}

// StartScan posts a scan request to the remote API.
func (c *Client) StartScan(ctx context.Context, targetURL string) (*StartResult, error) {
	if !c.APIConfigured() {
		return nil, ErrAPINotConfigured
	}

	var result StartResult
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"urls":                []string{targetURL},
			"scan_configurations": []string{"Lightweight"},
		}).
		SetResult(&result).
		Post("/scan")
	if err != nil {
		return nil, fmt.Errorf("burp scan request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return nil, fmt.Errorf("burp API refused scan start: status %d", resp.StatusCode())
	}

	if result.Message == "" {
		result.Message = "Scan started successfully"
	}
	return &result, nil
}
