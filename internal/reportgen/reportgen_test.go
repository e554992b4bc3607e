package reportgen

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/websectester/websectester/internal/report"
	"github.com/websectester/websectester/internal/scanner"
)

type fakeSource struct {
	records map[string]scanner.Record
}

func (f *fakeSource) Status(scanID string) (scanner.Record, error) {
	rec, ok := f.records[scanID]
	if !ok {
		return scanner.Record{}, scanner.ErrScanNotFound
	}
	return rec, nil
}

func sampleRecord() scanner.Record {
	return scanner.Record{
		ScanID:    "0a1b2c3d-4e5f-6789-abcd-ef0123456789",
		TargetURL: "https://example.com",
		Status:    scanner.StatusCompleted,
		StartTime: "2026-08-31T10:00:00Z",
		EndTime:   "2026-08-31T10:01:30Z",
		ScanTypes: []string{"all"},
		Findings: []report.Finding{
			{
				Category:    "recon",
				Severity:    report.SeverityMedium,
				Title:       "Missing HSTS Header",
				Description: "The response lacks Strict-Transport-Security.",
				Details:     map[string]any{"header": "Strict-Transport-Security"},
				Remediation: "Add the Strict-Transport-Security header.",
			},
			{
				Category:    "vulnerability",
				Severity:    report.SeverityHigh,
				Title:       "Reflected Parameter",
				Description: "Input is echoed into the response body.",
			},
			{
				Category: "info",
				Severity: report.SeverityInfo,
				Title:    "Target Response",
			},
		},
		Stats: report.Stats{High: 1, Medium: 1, Info: 1, VulnerabilitiesFound: 2},
	}
}

func newGenerator(t *testing.T) (*Generator, scanner.Record) {
	t.Helper()
	rec := sampleRecord()
	source := &fakeSource{records: map[string]scanner.Record{rec.ScanID: rec}}
	return New(source, filepath.Join(t.TempDir(), "reports")), rec
}

func TestGenerateJSON(t *testing.T) {
	g, rec := newGenerator(t)

	path, err := g.Generate(rec.ScanID, "json")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	name := filepath.Base(path)
	matched, err := regexp.MatchString(`^scan_0a1b2c3d_\d{8}_\d{6}\.json$`, name)
	if err != nil || !matched {
		t.Fatalf("unexpected report name %q", name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if out["scan_id"] != rec.ScanID || out["target_url"] != rec.TargetURL {
		t.Fatalf("report lost identity fields: %v", out)
	}
}

func TestGenerateHTML(t *testing.T) {
	g, rec := newGenerator(t)

	path, err := g.Generate(rec.ScanID, "html")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	body := string(data)

	for _, want := range []string{
		"Web Application Security Report",
		"https://example.com",
		"Missing HSTS Header",
		"Reflected Parameter",
		rec.ScanID,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("HTML report missing %q", want)
		}
	}

	// Findings render most severe first.
	if strings.Index(body, "Reflected Parameter") > strings.Index(body, "Missing HSTS Header") {
		t.Error("expected high severity finding before medium")
	}
}

func TestGeneratePDF(t *testing.T) {
	g, rec := newGenerator(t)

	path, err := g.Generate(rec.ScanID, "pdf")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(data[:5]), "%PDF-") {
		t.Fatalf("report does not look like a PDF: %q", data[:8])
	}
}

func TestGenerateUnknownScan(t *testing.T) {
	g, _ := newGenerator(t)

	for _, format := range []string{"pdf", "html", "json"} {
		if _, err := g.Generate("missing-scan", format); !errors.Is(err, ErrReportNotFound) {
			t.Errorf("format %s: expected ErrReportNotFound, got %v", format, err)
		}
	}
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	g, rec := newGenerator(t)

	if _, err := g.Generate(rec.ScanID, "docx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDetailString(t *testing.T) {
	if got := detailString("plain"); got != "plain" {
		t.Fatalf("unexpected string rendering %q", got)
	}
	if got := detailString(42); got != "42" {
		t.Fatalf("unexpected int rendering %q", got)
	}
	long := detailString([]string{strings.Repeat("x", 500)})
	if len(long) > 200 {
		t.Fatalf("expected structured values clipped to 200 bytes, got %d", len(long))
	}
}
