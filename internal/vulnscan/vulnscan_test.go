package vulnscan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/websectester/websectester/internal/report"
)

func scanURL(t *testing.T, srv *httptest.Server) []report.Finding {
	t.Helper()
	return New(5*time.Second).Scan(context.Background(), srv.URL, "")
}

func titles(findings []report.Finding) map[string]report.Finding {
	byTitle := make(map[string]report.Finding)
	for _, f := range findings {
		byTitle[f.Title] = f
	}
	return byTitle
}

func TestCORSWildcardDetected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}))
	defer srv.Close()

	byTitle := titles(scanURL(t, srv))

	wildcard, ok := byTitle["CORS Wildcard Origin Allowed"]
	if !ok {
		t.Fatalf("missing wildcard finding: %v", byTitle)
	}
	if wildcard.Severity != report.SeverityMedium {
		t.Fatalf("wildcard severity = %q, want medium", wildcard.Severity)
	}

	creds, ok := byTitle["CORS Wildcard with Credentials Enabled"]
	if !ok {
		t.Fatal("missing wildcard-with-credentials finding")
	}
	if creds.Severity != report.SeverityHigh {
		t.Fatalf("credentials severity = %q, want high", creds.Severity)
	}
}

func TestCookieWithoutHttpOnlyFlagged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "abc"})
	}))
	defer srv.Close()

	byTitle := titles(scanURL(t, srv))

	f, ok := byTitle["Cookie Without HttpOnly Flag"]
	if !ok {
		t.Fatal("missing HttpOnly finding")
	}
	if f.Severity != report.SeverityLow {
		t.Fatalf("severity = %q, want low", f.Severity)
	}
	if f.Details["cookie"] != "sid" {
		t.Fatalf("cookie detail = %v", f.Details["cookie"])
	}
}

func TestReflectedParameterDetected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Echo the query parameter without encoding.
		w.Write([]byte("<html>you searched for " + r.URL.Query().Get("wst") + "</html>"))
	}))
	defer srv.Close()

	byTitle := titles(scanURL(t, srv))

	f, ok := byTitle["Reflected Query Parameter"]
	if !ok {
		t.Fatal("missing reflection finding")
	}
	if f.Severity != report.SeverityHigh {
		t.Fatalf("severity = %q, want high", f.Severity)
	}
}

func TestEncodedReflectionNotFlagged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTML-escaping the value must not trigger the reflection check.
		escaped := []byte(nil)
		for _, c := range r.URL.Query().Get("wst") {
			switch c {
			case '<':
				escaped = append(escaped, []byte("&lt;")...)
			case '"':
				escaped = append(escaped, []byte("&quot;")...)
			default:
				escaped = append(escaped, []byte(string(c))...)
			}
		}
		w.Write(escaped)
	}))
	defer srv.Close()

	if _, ok := titles(scanURL(t, srv))["Reflected Query Parameter"]; ok {
		t.Fatal("encoded reflection should not be flagged")
	}
}

func TestOpenRedirectViaLocationHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if next := r.URL.Query().Get("next"); next != "" {
			w.Header().Set("Location", next)
			w.WriteHeader(http.StatusFound)
			return
		}
	}))
	defer srv.Close()

	f, ok := titles(scanURL(t, srv))["Possible Open Redirect Parameter"]
	if !ok {
		t.Fatal("missing open redirect finding")
	}
	if f.Severity != report.SeverityMedium {
		t.Fatalf("severity = %q, want medium", f.Severity)
	}
	if f.Details["parameter"] != "next" {
		t.Fatalf("parameter detail = %v", f.Details["parameter"])
	}
}

func TestSensitiveGitConfigDetected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/.git/config" {
			w.Write([]byte("[core]\n\trepositoryformatversion = 0\n"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	found := false
	for _, f := range scanURL(t, srv) {
		if f.Category == "sensitive_path" && f.Details["path"] == "/.git/config" {
			found = true
			if f.Severity != report.SeverityMedium {
				t.Fatalf("severity = %q, want medium", f.Severity)
			}
		}
	}
	if !found {
		t.Fatal("missing .git/config finding")
	}
}

func TestUnreachableTargetYieldsSingleFailureFinding(t *testing.T) {
	findings := New(2*time.Second).Scan(context.Background(), "http://127.0.0.1:1/", "")
	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %d: %+v", len(findings), findings)
	}
	if findings[0].Title != "Vulnerability Probe Failed" {
		t.Fatalf("unexpected finding: %+v", findings[0])
	}
}

func TestCheckPanicBecomesIncompleteFinding(t *testing.T) {
	boom := check{Name: "Boom", Run: func(*pageContext) []report.Finding { panic("kaput") }}
	findings := runCheck(boom, nil)
	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %d", len(findings))
	}
	if findings[0].Title != "Boom Check Incomplete" || findings[0].Severity != report.SeverityInfo {
		t.Fatalf("unexpected finding: %+v", findings[0])
	}
}
