package vulnscan

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/websectester/websectester/internal/engine"
	"github.com/websectester/websectester/internal/messages"
	"github.com/websectester/websectester/internal/report"
)

// reflectionMarker is crafted to survive only when the server echoes query
// values without HTML encoding.
const reflectionMarker = `wstprobe'"<zx>`

// redirectMarker is an absolute URL no sane page links to on its own.
const redirectMarker = "https://wst-redirect-probe.example/landing"

var redirectParams = []string{"next", "url", "redirect", "return"}

var versionDigits = regexp.MustCompile(`\d`)

var envLine = regexp.MustCompile(`(?m)^[A-Z][A-Z0-9_]*=`)

func checkCORSPolicy(pc *pageContext) []report.Finding {
	var findings []report.Finding

	acao := pc.response.Header.Get("Access-Control-Allow-Origin")
	if acao != "*" {
		return nil
	}

	msg := messages.Get("CORS_WILDCARD_ORIGIN")
	findings = append(findings, report.Finding{
		Category:    "cors",
		Severity:    report.SeverityMedium,
		Title:       msg.Title,
		Description: msg.Description,
		Details:     map[string]any{"access_control_allow_origin": acao},
		Remediation: msg.Remediation,
	})

	if strings.EqualFold(pc.response.Header.Get("Access-Control-Allow-Credentials"), "true") {
		msg := messages.Get("CORS_WILDCARD_WITH_CREDENTIALS")
		findings = append(findings, report.Finding{
			Category:    "cors",
			Severity:    report.SeverityHigh,
			Title:       msg.Title,
			Description: msg.Description,
			Details: map[string]any{
				"access_control_allow_origin":      acao,
				"access_control_allow_credentials": "true",
			},
			Remediation: msg.Remediation,
		})
	}

	return findings
}

func checkCookieFlags(pc *pageContext) []report.Finding {
	var findings []report.Finding

	https := pc.response.Request != nil && pc.response.Request.URL.Scheme == "https"

	for _, cookie := range pc.response.Cookies() {
		if https && !cookie.Secure {
			msg := messages.Get("COOKIE_MISSING_SECURE")
			findings = append(findings, report.Finding{
				Category:    "cookie_security",
				Severity:    report.SeverityMedium,
				Title:       msg.Title,
				Description: msg.Description,
				Details:     map[string]any{"cookie": cookie.Name},
				Remediation: msg.Remediation,
			})
		}
		if !cookie.HttpOnly {
			msg := messages.Get("COOKIE_MISSING_HTTPONLY")
			findings = append(findings, report.Finding{
				Category:    "cookie_security",
				Severity:    report.SeverityLow,
				Title:       msg.Title,
				Description: msg.Description,
				Details:     map[string]any{"cookie": cookie.Name},
				Remediation: msg.Remediation,
			})
		}
	}

	return findings
}

func checkInformationLeakage(pc *pageContext) []report.Finding {
	var findings []report.Finding
	msg := messages.Get("SERVER_BANNER")

	if server := pc.response.Header.Get("Server"); server != "" && versionDigits.MatchString(server) {
		findings = append(findings, report.Finding{
			Category:    "information_leakage",
			Severity:    report.SeverityLow,
			Title:       msg.Title,
			Description: msg.Description,
			Details:     map[string]any{"header": "Server", "value": server},
			Remediation: msg.Remediation,
		})
	}
	if powered := pc.response.Header.Get("X-Powered-By"); powered != "" {
		findings = append(findings, report.Finding{
			Category:    "information_leakage",
			Severity:    report.SeverityLow,
			Title:       msg.Title,
			Description: msg.Description,
			Details:     map[string]any{"header": "X-Powered-By", "value": powered},
			Remediation: msg.Remediation,
		})
	}

	return findings
}

func checkReflectedParams(pc *pageContext) []report.Finding {
	probe := *pc.target
	q := probe.Query()
	q.Set("wst", reflectionMarker)
	probe.RawQuery = q.Encode()

	body, _, err := fetch(pc, probe.String())
	if err != nil {
		return nil
	}

	if !strings.Contains(body, reflectionMarker) {
		return nil
	}

	msg := messages.Get("REFLECTED_PARAMETER")
	return []report.Finding{{
		Category:    "reflected_input",
		Severity:    report.SeverityHigh,
		Title:       msg.Title,
		Description: msg.Description,
		Details: map[string]any{
			"parameter": "wst",
			"payload":   reflectionMarker,
			"url":       probe.String(),
		},
		Remediation: msg.Remediation,
	}}
}

func checkOpenRedirect(pc *pageContext) []report.Finding {
	for _, param := range redirectParams {
		probe := *pc.target
		q := probe.Query()
		q.Set(param, redirectMarker)
		probe.RawQuery = q.Encode()

		body, location, err := fetch(pc, probe.String())
		if err != nil {
			continue
		}

		if strings.HasPrefix(location, redirectMarker) || strings.Contains(body, redirectMarker) {
			msg := messages.Get("OPEN_REDIRECT_PARAMETER")
			return []report.Finding{{
				Category:    "open_redirect",
				Severity:    report.SeverityMedium,
				Title:       msg.Title,
				Description: msg.Description,
				Details: map[string]any{
					"parameter": param,
					"url":       probe.String(),
				},
				Remediation: msg.Remediation,
			}}
		}
	}
	return nil
}

// sensitivePaths pairs a path with a body predicate that must hold before
// the path is reported. A nil predicate accepts any 200 response.
var sensitivePaths = []struct {
	Path     string
	Severity report.Severity
	Confirm  func(body string) bool
}{
	{"/.git/config", report.SeverityMedium, func(body string) bool { return strings.Contains(body, "[core]") }},
	{"/.env", report.SeverityMedium, func(body string) bool { return envLine.MatchString(body) }},
	{"/server-status", report.SeverityInfo, nil},
	{"/admin/", report.SeverityInfo, nil},
}

func checkSensitivePaths(pc *pageContext) []report.Finding {
	var findings []report.Finding
	msg := messages.Get("SENSITIVE_PATH_EXPOSED")

	base := *pc.target
	base.RawQuery = ""

	for _, sp := range sensitivePaths {
		probe := base
		probe.Path = sp.Path

		body, _, err := fetchWithStatus(pc, probe.String(), 200)
		if err != nil {
			continue
		}
		if sp.Confirm != nil && !sp.Confirm(body) {
			continue
		}

		findings = append(findings, report.Finding{
			Category:    "sensitive_path",
			Severity:    sp.Severity,
			Title:       msg.Title,
			Description: fmt.Sprintf("%s (%s)", msg.Description, sp.Path),
			Details:     map[string]any{"path": sp.Path, "url": probe.String()},
			Remediation: msg.Remediation,
		})
	}

	return findings
}

// fetch issues a GET without following redirects and returns the body and
// any Location header.
func fetch(pc *pageContext, target string) (body, location string, err error) {
	return fetchWithStatus(pc, target, 0)
}

func fetchWithStatus(pc *pageContext, target string, wantStatus int) (body, location string, err error) {
	req, err := engine.NewRequest(pc.ctx, target)
	if err != nil {
		return "", "", err
	}

	client := *pc.client
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if wantStatus != 0 && resp.StatusCode != wantStatus {
		return "", "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	return string(raw), resp.Header.Get("Location"), nil
}
