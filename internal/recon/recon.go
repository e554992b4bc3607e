// Package recon performs the initial reachability probe and passive
// response inspection against the target.
package recon

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/publicsuffix"

	"github.com/websectester/websectester/internal/engine"
	"github.com/websectester/websectester/internal/messages"
	"github.com/websectester/websectester/internal/report"
)

// maxBodyBytes caps how much of the response is read for inspection.
const maxBodyBytes = 2 << 20

type headerCheck struct {
	Name     string
	Severity report.Severity
}

// securityHeaders is the fixed checklist evaluated on every probe. The
// severity applies when the header is absent.
var securityHeaders = []headerCheck{
	{"Strict-Transport-Security", report.SeverityMedium},
	{"Content-Security-Policy", report.SeverityMedium},
	{"X-Frame-Options", report.SeverityMedium},
	{"X-Content-Type-Options", report.SeverityLow},
	{"Referrer-Policy", report.SeverityLow},
	{"Permissions-Policy", report.SeverityInfo},
}

type Scanner struct {
	Timeout time.Duration
}

func New(timeout time.Duration) *Scanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scanner{Timeout: timeout}
}

func (s *Scanner) Name() string { return "recon" }

// Scan probes the target once and inspects the response. All transport
// errors are converted to findings; this module never fails the pipeline.
func (s *Scanner) Scan(ctx context.Context, target, proxyURL string) []report.Finding {
	var findings []report.Finding

	client := engine.NewHTTPClient(s.Timeout, proxyURL)
	req, err := engine.NewRequest(ctx, target)
	if err != nil {
		return append(findings, connectionError(err))
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return append(findings, connectionError(err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)

	details := map[string]any{
		"status_code":    resp.StatusCode,
		"content_length": len(body),
		"response_time":  elapsed.Seconds(),
		"server":         headerOrUnknown(resp.Header.Get("Server")),
		"content_type":   headerOrUnknown(resp.Header.Get("Content-Type")),
	}
	if root := rootDomain(target); root != "" {
		details["root_domain"] = root
	}

	findings = append(findings, report.Finding{
		Category:    "info",
		Severity:    report.SeverityInfo,
		Title:       "Target Response",
		Description: fmt.Sprintf("Target responded with status code %d", resp.StatusCode),
		Details:     details,
	})

	for _, check := range securityHeaders {
		value := resp.Header.Get(check.Name)
		if value == "" {
			msg := messages.Get("HEADER_MISSING_" + check.Name)
			findings = append(findings, report.Finding{
				Category:    "security_header",
				Severity:    check.Severity,
				Title:       msg.Title,
				Description: msg.Description,
				Details:     map[string]any{"header": check.Name, "present": false},
				Remediation: msg.Remediation,
			})
			continue
		}
		findings = append(findings, report.Finding{
			Category:    "security_header",
			Severity:    report.SeverityInfo,
			Title:       check.Name + " Present",
			Description: fmt.Sprintf("%s header is properly configured", check.Name),
			Details:     map[string]any{"header": check.Name, "value": value, "present": true},
		})
	}

	if count := countForms(body); count > 0 {
		findings = append(findings, report.Finding{
			Category:    "info",
			Severity:    report.SeverityInfo,
			Title:       "Forms Detected",
			Description: fmt.Sprintf("Found %d form(s) on the page", count),
			Details:     map[string]any{"form_count": count},
		})
	}

	return findings
}

func connectionError(err error) report.Finding {
	return report.Finding{
		Category:    "error",
		Severity:    report.SeverityHigh,
		Title:       "Connection Error",
		Description: fmt.Sprintf("Could not connect to target: %v", err),
	}
}

func headerOrUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}

func countForms(body []byte) int {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return 0
	}

	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "form" {
			count++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return count
}

func rootDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return ""
	}
	root, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return root
}
