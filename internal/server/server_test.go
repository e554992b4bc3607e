package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/websectester/websectester/internal/report"
	"github.com/websectester/websectester/internal/reportgen"
	"github.com/websectester/websectester/internal/scanner"
)

type fakeScans struct {
	records map[string]scanner.Record
	history []scanner.Record

	lastTypes   []string
	lastBurp    bool
	lastBrowser bool
	submitErr   error
}

func (f *fakeScans) Submit(targetURL string, scanTypes []string, useBurp, useBrowser bool) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.lastTypes = scanTypes
	f.lastBurp = useBurp
	f.lastBrowser = useBrowser
	return "scan-123", nil
}

func (f *fakeScans) Status(scanID string) (scanner.Record, error) {
	rec, ok := f.records[scanID]
	if !ok {
		return scanner.Record{}, scanner.ErrScanNotFound
	}
	return rec, nil
}

func (f *fakeScans) History() []scanner.Record { return f.history }

type fakeReports struct {
	path string
	err  error
}

func (f *fakeReports) Generate(scanID, format string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

func newTestServer(scans *fakeScans, reports *fakeReports) http.Handler {
	if reports == nil {
		reports = &fakeReports{}
	}
	return New(nil, scans, reports).Handler()
}

func TestStartScan(t *testing.T) {
	scans := &fakeScans{}
	h := newTestServer(scans, nil)

	body := strings.NewReader(`{"url": "https://example.com", "scan_types": ["recon"], "use_burp": true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["scan_id"] != "scan-123" || resp["status"] != "started" {
		t.Fatalf("unexpected response: %v", resp)
	}

	if len(scans.lastTypes) != 1 || scans.lastTypes[0] != "recon" {
		t.Fatalf("unexpected scan types: %v", scans.lastTypes)
	}
	if !scans.lastBurp {
		t.Fatal("expected use_burp to pass through")
	}
	if !scans.lastBrowser {
		t.Fatal("expected browser to default on when use_selenium is absent")
	}
}

func TestStartScanBrowserOptOut(t *testing.T) {
	scans := &fakeScans{}
	h := newTestServer(scans, nil)

	body := strings.NewReader(`{"url": "https://example.com", "use_selenium": false}`)
	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if scans.lastBrowser {
		t.Fatal("expected use_selenium false to disable the browser stage")
	}
	if len(scans.lastTypes) != 1 || scans.lastTypes[0] != scanner.ModuleAll {
		t.Fatalf("expected default scan types, got %v", scans.lastTypes)
	}
}

func TestStartScanValidation(t *testing.T) {
	h := newTestServer(&fakeScans{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{"scan_types": ["all"]}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing url, got %d", rr.Code)
	}
	var resp map[string]string
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["error"] != "Target URL is required" {
		t.Fatalf("unexpected error message %q", resp["error"])
	}

	req = httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader("{not json"))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rr.Code)
	}
}

func TestStartScanSubmitError(t *testing.T) {
	h := newTestServer(&fakeScans{submitErr: scanner.ErrNoModules}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{"url": "https://example.com", "scan_types": ["burp"]}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestScanStatus(t *testing.T) {
	rec := scanner.Record{
		ScanID:    "scan-1",
		TargetURL: "https://example.com",
		Status:    scanner.StatusCompleted,
		Findings:  []report.Finding{{Category: "recon", Severity: report.SeverityMedium, Title: "Missing Header"}},
		Stats:     report.Stats{Medium: 1, VulnerabilitiesFound: 1},
	}
	h := newTestServer(&fakeScans{records: map[string]scanner.Record{"scan-1": rec}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/scan/status/scan-1", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if out["scan_id"] != "scan-1" || out["status"] != "completed" {
		t.Fatalf("unexpected payload: %v", out)
	}
	stats, _ := out["stats"].(map[string]any)
	if stats["vulnerabilities_found"] != float64(1) {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestScanStatusNotFound(t *testing.T) {
	h := newTestServer(&fakeScans{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/scan/status/nope", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestHistory(t *testing.T) {
	h := newTestServer(&fakeScans{history: []scanner.Record{{ScanID: "a"}, {ScanID: "b"}}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var out []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(out) != 2 || out[0]["scan_id"] != "a" {
		t.Fatalf("unexpected history payload: %v", out)
	}
}

func TestHistoryEmptyIsArray(t *testing.T) {
	h := newTestServer(&fakeScans{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

func TestReportDownload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan_abc_20260831.json")
	if err := os.WriteFile(path, []byte(`{"scan_id":"abc"}`), 0o644); err != nil {
		t.Fatalf("seed report file: %v", err)
	}

	h := newTestServer(&fakeScans{}, &fakeReports{path: path})

	req := httptest.NewRequest(http.MethodGet, "/api/report/abc?format=json", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "scan_abc_20260831.json") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
}

func TestReportErrors(t *testing.T) {
	h := newTestServer(&fakeScans{}, &fakeReports{err: reportgen.ErrReportNotFound})
	req := httptest.NewRequest(http.MethodGet, "/api/report/missing", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	h = newTestServer(&fakeScans{}, &fakeReports{err: reportgen.ErrUnsupportedFormat})
	req = httptest.NewRequest(http.MethodGet, "/api/report/abc?format=docx", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(&fakeScans{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_") && !strings.Contains(rr.Body.String(), "websectester_") {
		t.Fatal("expected prometheus metrics output")
	}
}
