// Package reportgen renders completed scans as PDF, HTML or JSON files.
package reportgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/websectester/websectester/internal/report"
	"github.com/websectester/websectester/internal/scanner"
)

var (
	// ErrReportNotFound means no scan with the given id exists.
	ErrReportNotFound = errors.New("scan not found for report")

	// ErrUnsupportedFormat means the requested format is not one of
	// pdf, html or json.
	ErrUnsupportedFormat = errors.New("unsupported report format")
)

// maxPDFFindings caps the detailed findings section of the PDF.
const maxPDFFindings = 50

// RecordSource resolves a scan id to its record, active or historical.
type RecordSource interface {
	Status(scanID string) (scanner.Record, error)
}

type Generator struct {
	source RecordSource
	dir    string
}

func New(source RecordSource, dir string) *Generator {
	if dir == "" {
		dir = "reports"
	}
	return &Generator{source: source, dir: dir}
}

// Generate renders the scan in the given format and returns the file path.
func (g *Generator) Generate(scanID, format string) (string, error) {
	rec, err := g.source.Status(scanID)
	if err != nil {
		if errors.Is(err, scanner.ErrScanNotFound) {
			return "", fmt.Errorf("%w: %s", ErrReportNotFound, scanID)
		}
		return "", err
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	path := g.reportPath(rec.ScanID, format)
	switch format {
	case "pdf":
		err = writePDF(path, rec)
	case "html":
		err = writeHTML(path, rec)
	case "json":
		err = writeJSON(path, rec)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// reportPath builds scan_<first 8 id chars>_<timestamp>.<ext> under the
// report directory.
func (g *Generator) reportPath(scanID, ext string) string {
	short := scanID
	if len(short) > 8 {
		short = short[:8]
	}
	name := fmt.Sprintf("scan_%s_%s.%s", short, time.Now().Format("20060102_150405"), ext)
	return filepath.Join(g.dir, name)
}

func writeJSON(path string, rec scanner.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// sortedFindings orders findings critical first for the rendered formats.
func sortedFindings(rec scanner.Record) []report.Finding {
	return report.SortBySeverity(rec.Findings)
}

// sortedDetailKeys gives the details map a stable render order.
func sortedDetailKeys(details map[string]any) []string {
	keys := make([]string, 0, len(details))
	for key := range details {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// detailString flattens one details value for display, truncating large
// structures.
func detailString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		out, _ := json.Marshal(v)
		return clip(string(out), 200)
	case map[string]any, []any, []map[string]any:
		out, _ := json.MarshalIndent(v, "", "  ")
		return clip(string(out), 200)
	default:
		return fmt.Sprint(v)
	}
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
