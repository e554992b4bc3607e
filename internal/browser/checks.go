package browser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/websectester/websectester/internal/report"
)

// xssPayloads are fragment-identifier payloads aimed at unsanitized DOM
// sinks. The first one that triggers a native dialog wins.
var xssPayloads = []string{
	`<img src=x onerror=alert(1)>`,
	`'-alert(1)-'`,
	`<script>alert(1)</script>`,
	`javascript:alert(1)`,
}

var sensitiveKeyPattern = regexp.MustCompile(`(?i)password|token|secret|key|auth|credential|session`)

const mixedContentCap = 5

const collectInsecureResourcesJS = `(() => {
	const out = [];
	const push = (type, url) => { if (url && url.startsWith('http:')) out.push({type, url}); };
	for (const el of document.querySelectorAll('img[src]')) push('image', el.getAttribute('src'));
	for (const el of document.querySelectorAll('script[src]')) push('script', el.getAttribute('src'));
	for (const el of document.querySelectorAll('link[rel="stylesheet"][href]')) push('stylesheet', el.getAttribute('href'));
	for (const el of document.querySelectorAll('iframe[src]')) push('iframe', el.getAttribute('src'));
	return out;
})()`

const collectFormsJS = `(() => Array.from(document.querySelectorAll('form'))
	.map(f => ({action: f.getAttribute('action') || ''})))()`

const collectPasswordInputsJS = `(() => Array.from(document.querySelectorAll('input[type="password"]'))
	.map(i => ({autocomplete: i.getAttribute('autocomplete') || ''})))()`

const collectStorageJS = `(storage => {
	const out = {};
	for (let i = 0; i < storage.length; i++) {
		const key = storage.key(i);
		out[key] = String(storage.getItem(key));
	}
	return out;
})`

type insecureResource struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type pageForm struct {
	Action string `json:"action"`
}

type passwordInput struct {
	Autocomplete string `json:"autocomplete"`
}

func (sess *session) testDOMXSS(target string) ([]report.Finding, error) {
	for _, payload := range xssPayloads {
		sess.dialogs.arm()

		probe := target + "#" + payload
		if err := sess.navigate(probe); err != nil {
			continue
		}

		if message, fired := sess.dialogs.observed(); fired {
			return []report.Finding{{
				Category:    "dom_xss",
				Severity:    report.SeverityCritical,
				Title:       "DOM-based XSS Vulnerability",
				Description: "DOM-based XSS detected - JavaScript executed from URL hash",
				Details: map[string]any{
					"payload":    payload,
					"url":        probe,
					"alert_text": message,
				},
				Remediation: "Sanitize all user input before inserting into DOM. Use textContent instead of innerHTML.",
			}}, nil
		}
	}
	return nil, nil
}

func (sess *session) checkMixedContent(target string) ([]report.Finding, error) {
	if err := sess.navigate(target); err != nil {
		return nil, err
	}

	current, err := sess.location()
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(current, "https:") {
		return []report.Finding{{
			Category:    "info",
			Severity:    report.SeverityInfo,
			Title:       "Not HTTPS",
			Description: "Target is not using HTTPS",
			Details:     map[string]any{"url": current},
		}}, nil
	}

	var resources []insecureResource
	if err := chromedp.Run(sess.ctx, chromedp.Evaluate(collectInsecureResourcesJS, &resources)); err != nil {
		return nil, err
	}

	return mixedContentFindings(resources), nil
}

// mixedContentFindings reports insecure subresources on a secure page,
// listing at most the first mixedContentCap in details.
func mixedContentFindings(resources []insecureResource) []report.Finding {
	if len(resources) == 0 {
		return nil
	}

	listed := resources
	if len(listed) > mixedContentCap {
		listed = listed[:mixedContentCap]
	}
	entries := make([]map[string]any, 0, len(listed))
	for _, r := range listed {
		entries = append(entries, map[string]any{"type": r.Type, "src": r.URL})
	}

	return []report.Finding{{
		Category:    "mixed_content",
		Severity:    report.SeverityMedium,
		Title:       "Mixed Content Detected",
		Description: fmt.Sprintf("Found %d HTTP resource(s) on HTTPS page", len(resources)),
		Details: map[string]any{
			"count":     len(resources),
			"resources": entries,
		},
		Remediation: "Load all resources over HTTPS. Use protocol-relative URLs or always use HTTPS.",
	}}
}

func (sess *session) checkInsecureForms(target string) ([]report.Finding, error) {
	if err := sess.navigate(target); err != nil {
		return nil, err
	}

	current, err := sess.location()
	if err != nil {
		return nil, err
	}

	var forms []pageForm
	if err := chromedp.Run(sess.ctx, chromedp.Evaluate(collectFormsJS, &forms)); err != nil {
		return nil, err
	}

	var passwords []passwordInput
	if err := chromedp.Run(sess.ctx, chromedp.Evaluate(collectPasswordInputsJS, &passwords)); err != nil {
		return nil, err
	}

	return formFindings(forms, passwords, strings.HasPrefix(current, "https:")), nil
}

// formFindings flags forms submitting over plaintext and password fields
// without an explicit autocomplete hint.
func formFindings(forms []pageForm, passwords []passwordInput, https bool) []report.Finding {
	var findings []report.Finding

	var insecure []string
	for _, form := range forms {
		if strings.HasPrefix(form.Action, "http:") || (form.Action == "" && !https) {
			action := form.Action
			if action == "" {
				action = "Current page (insecure)"
			}
			insecure = append(insecure, action)
		}
	}
	if len(insecure) > 0 {
		listed := insecure
		if len(listed) > 3 {
			listed = listed[:3]
		}
		findings = append(findings, report.Finding{
			Category:    "insecure_form",
			Severity:    report.SeverityHigh,
			Title:       "Insecure Form Submission",
			Description: fmt.Sprintf("Found %d form(s) submitting to HTTP", len(insecure)),
			Details: map[string]any{
				"count": len(insecure),
				"forms": listed,
			},
			Remediation: "Ensure all forms submit to HTTPS endpoints.",
		})
	}

	for _, input := range passwords {
		if input.Autocomplete == "" || input.Autocomplete == "on" {
			autocomplete := input.Autocomplete
			if autocomplete == "" {
				autocomplete = "not set"
			}
			findings = append(findings, report.Finding{
				Category:    "password_security",
				Severity:    report.SeverityLow,
				Title:       "Password Field Autocomplete",
				Description: "Password field may have autocomplete enabled",
				Details:     map[string]any{"autocomplete": autocomplete},
				Remediation: `Set autocomplete="new-password" or autocomplete="current-password" appropriately.`,
			})
		}
	}

	return findings
}

func (sess *session) testClickjacking(target string) ([]report.Finding, error) {
	// Embedding the target in a frame cannot be tested reliably from inside
	// the target's own page; point at the header-based check instead.
	return []report.Finding{{
		Category:    "clickjacking",
		Severity:    report.SeverityInfo,
		Title:       "Clickjacking Test",
		Description: "Clickjacking protection should be verified via security headers",
		Details: map[string]any{
			"note": "Check X-Frame-Options and CSP frame-ancestors in security headers scan",
		},
		Remediation: "Implement X-Frame-Options: DENY or SAMEORIGIN, or CSP frame-ancestors directive.",
	}}, nil
}

func (sess *session) checkClientStorage(target string) ([]report.Finding, error) {
	if err := sess.navigate(target); err != nil {
		return nil, err
	}

	var localStorage, sessionStorage map[string]string
	if err := chromedp.Run(sess.ctx,
		chromedp.Evaluate(collectStorageJS+`(localStorage)`, &localStorage),
		chromedp.Evaluate(collectStorageJS+`(sessionStorage)`, &sessionStorage),
	); err != nil {
		return nil, err
	}

	return storageFindings(localStorage, sessionStorage), nil
}

// storageFindings flags storage keys matching the sensitive-term pattern
// and summarizes what was found.
func storageFindings(localStorage, sessionStorage map[string]string) []report.Finding {
	var findings []report.Finding

	flag := func(storageType string, items map[string]string) {
		keys := make([]string, 0, len(items))
		for key := range items {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if !sensitiveKeyPattern.MatchString(key) {
				continue
			}
			findings = append(findings, report.Finding{
				Category:    "client_storage",
				Severity:    report.SeverityMedium,
				Title:       "Potentially Sensitive Data in Client Storage",
				Description: fmt.Sprintf("Key %q in storage may contain sensitive data", key),
				Details: map[string]any{
					"storage_type":  storageType,
					"key":           key,
					"value_preview": previewValue(items[key]),
				},
				Remediation: "Avoid storing sensitive data in client-side storage. Use secure, httpOnly cookies instead.",
			})
		}
	}

	flag("localStorage", localStorage)
	flag("sessionStorage", sessionStorage)

	if len(localStorage) > 0 || len(sessionStorage) > 0 {
		findings = append(findings, report.Finding{
			Category:    "info",
			Severity:    report.SeverityInfo,
			Title:       "Client Storage Detected",
			Description: fmt.Sprintf("Found %d localStorage and %d sessionStorage items", len(localStorage), len(sessionStorage)),
			Details: map[string]any{
				"localStorage_keys":   sortedKeys(localStorage),
				"sessionStorage_keys": sortedKeys(sessionStorage),
			},
		})
	}

	return findings
}

func previewValue(value string) string {
	if len(value) > 50 {
		return value[:50] + "..."
	}
	return value
}

func sortedKeys(items map[string]string) []string {
	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
