// Package browser drives a headless Chrome session against the target to
// detect client-side issues unreachable by pure HTTP probing.
package browser

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/websectester/websectester/internal/report"
	"github.com/websectester/websectester/internal/version"
)

var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

type Scanner struct {
	// ChromePath forces a specific browser binary. Empty means autodetect.
	ChromePath string

	// PageTimeout bounds each navigation.
	PageTimeout time.Duration

	// SettleDelay is the fixed wait after navigation so page script can run.
	SettleDelay time.Duration
}

func New(chromePath string) *Scanner {
	return &Scanner{
		ChromePath:  chromePath,
		PageTimeout: 30 * time.Second,
		SettleDelay: 2 * time.Second,
	}
}

func (s *Scanner) Name() string { return "browser" }

// Available reports whether a Chrome binary can be found in the runtime.
// The orchestrator excludes this module entirely when it returns false.
func (s *Scanner) Available() bool {
	if s.ChromePath != "" {
		if _, err := exec.LookPath(s.ChromePath); err == nil {
			return true
		}
		return false
	}
	for _, candidate := range chromeCandidates {
		if _, err := exec.LookPath(candidate); err == nil {
			return true
		}
	}
	return false
}

// session owns one browser context and the dialog watcher attached to it.
type session struct {
	ctx     context.Context
	dialogs *dialogWatcher
	timeout time.Duration
	settle  time.Duration
}

// dialogWatcher records native JavaScript dialogs so the DOM injection
// probes can observe payload execution. Dialogs are auto-dismissed to keep
// navigation from wedging.
type dialogWatcher struct {
	mu      sync.Mutex
	fired   bool
	message string
}

func (w *dialogWatcher) arm() {
	w.mu.Lock()
	w.fired = false
	w.message = ""
	w.mu.Unlock()
}

func (w *dialogWatcher) record(message string) {
	w.mu.Lock()
	w.fired = true
	w.message = message
	w.mu.Unlock()
}

func (w *dialogWatcher) observed() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.message, w.fired
}

// Scan opens a scoped browser session and runs every client-side check.
// The session is released on all exit paths; a failure in one check yields
// an informational finding and the remaining checks still run.
func (s *Scanner) Scan(ctx context.Context, target, proxyURL string) []report.Finding {
	var findings []report.Finding

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.UserAgent(version.ScannerUserAgent()),
	)
	if s.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.ChromePath))
	}
	if proxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(proxyURL))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	watcher := &dialogWatcher{}
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if dialog, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			watcher.record(dialog.Message)
			go func() {
				_ = chromedp.Run(browserCtx, page.HandleJavaScriptDialog(true))
			}()
		}
	})

	// Launch check: if the browser cannot start at all there is nothing to
	// probe, so report once and bail out.
	if err := chromedp.Run(browserCtx); err != nil {
		return append(findings, report.Finding{
			Category:    "error",
			Severity:    report.SeverityInfo,
			Title:       "Browser Scan Error",
			Description: fmt.Sprintf("Error during browser scan: %v", err),
		})
	}

	sess := &session{
		ctx:     browserCtx,
		dialogs: watcher,
		timeout: s.PageTimeout,
		settle:  s.SettleDelay,
	}

	checks := []struct {
		Name string
		Run  func(*session, string) ([]report.Finding, error)
	}{
		{"DOM XSS Test", (*session).testDOMXSS},
		{"Mixed Content Check", (*session).checkMixedContent},
		{"Form Security Check", (*session).checkInsecureForms},
		{"Clickjacking Test", (*session).testClickjacking},
		{"Client Storage Check", (*session).checkClientStorage},
	}

	for _, check := range checks {
		result, err := check.Run(sess, target)
		if err != nil {
			findings = append(findings, report.Finding{
				Category:    "info",
				Severity:    report.SeverityInfo,
				Title:       check.Name + " Incomplete",
				Description: fmt.Sprintf("Could not complete %s: %v", check.Name, err),
			})
			continue
		}
		findings = append(findings, result...)
	}

	return findings
}

// navigate loads a URL with the page timeout and gives client-side script
// a fixed delay to execute.
func (sess *session) navigate(target string) error {
	navCtx, cancel := context.WithTimeout(sess.ctx, sess.timeout)
	defer cancel()

	return chromedp.Run(navCtx,
		chromedp.Navigate(target),
		chromedp.Sleep(sess.settle),
	)
}

func (sess *session) location() (string, error) {
	var current string
	if err := chromedp.Run(sess.ctx, chromedp.Location(&current)); err != nil {
		return "", err
	}
	return current, nil
}
