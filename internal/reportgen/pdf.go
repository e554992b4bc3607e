package reportgen

import (
	"fmt"
	"strings"

	gofpdf "github.com/go-pdf/fpdf"

	"github.com/websectester/websectester/internal/report"
	"github.com/websectester/websectester/internal/scanner"
)

// severityRGB maps severities to the palette shared with the HTML report.
func severityRGB(s report.Severity) (int, int, int) {
	switch s.Normalize() {
	case report.SeverityCritical:
		return 211, 47, 47
	case report.SeverityHigh:
		return 245, 124, 0
	case report.SeverityMedium:
		return 251, 192, 45
	case report.SeverityLow:
		return 104, 143, 56
	default:
		return 25, 118, 210
	}
}

func writePDF(path string, rec scanner.Record) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(26, 35, 126)
	pdf.CellFormat(0, 14, "Web Application Security Report", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	addExecutiveSummary(pdf, rec)
	addRiskSummary(pdf, rec.Stats)
	addDetailedFindings(pdf, rec)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf report: %w", err)
	}
	return nil
}

func addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(40, 53, 147)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func addExecutiveSummary(pdf *gofpdf.Fpdf, rec scanner.Record) {
	addSectionHeader(pdf, "Executive Summary")

	rows := [][2]string{
		{"Target URL", orNA(rec.TargetURL)},
		{"Scan ID", rec.ScanID},
		{"Start Time", orNA(rec.StartTime)},
		{"End Time", orNA(rec.EndTime)},
		{"Status", orNA(string(rec.Status))},
	}

	pdf.SetDrawColor(128, 128, 128)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFillColor(232, 234, 246)
		pdf.CellFormat(50, 8, row[0], "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetFillColor(255, 255, 255)
		pdf.CellFormat(120, 8, row[1], "1", 1, "L", true, 0, "")
	}
	pdf.Ln(8)
}

func addRiskSummary(pdf *gofpdf.Fpdf, stats report.Stats) {
	addSectionHeader(pdf, "Risk Summary")

	rows := []struct {
		severity report.Severity
		label    string
		count    int
		advice   string
	}{
		{report.SeverityCritical, "Critical", stats.Critical, "Immediate action required"},
		{report.SeverityHigh, "High", stats.High, "Address as soon as possible"},
		{report.SeverityMedium, "Medium", stats.Medium, "Address in next release"},
		{report.SeverityLow, "Low", stats.Low, "Address when convenient"},
		{report.SeverityInfo, "Info", stats.Info, "Informational findings"},
	}

	pdf.SetDrawColor(128, 128, 128)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		if row.count > 0 {
			r, g, b := severityRGB(row.severity)
			pdf.SetTextColor(r, g, b)
		} else {
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.CellFormat(30, 8, row.label, "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(25, 8, fmt.Sprint(row.count), "1", 0, "C", false, 0, "")
		pdf.CellFormat(115, 8, row.advice, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

func addDetailedFindings(pdf *gofpdf.Fpdf, rec scanner.Record) {
	pdf.AddPage()
	addSectionHeader(pdf, "Detailed Findings")

	findings := sortedFindings(rec)
	if len(findings) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(80, 80, 80)
		pdf.MultiCell(0, 5, "No findings were recorded for this scan.", "", "L", false)
		return
	}
	if len(findings) > maxPDFFindings {
		findings = findings[:maxPDFFindings]
	}

	for i, f := range findings {
		severity := f.Severity.Normalize()
		r, g, b := severityRGB(severity)

		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(r, g, b)
		header := fmt.Sprintf("%d. [%s] %s", i+1, strings.ToUpper(string(severity)), f.Title)
		pdf.MultiCell(0, 7, header, "", "L", false)

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 5, "Type: "+orNA(f.Category), "", "L", false)
		pdf.MultiCell(0, 5, "Description: "+orNA(f.Description), "", "L", false)

		if len(f.Details) > 0 {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.MultiCell(0, 5, "Details:", "", "L", false)
			pdf.SetFont("Helvetica", "", 9)
			for _, key := range sortedDetailKeys(f.Details) {
				line := fmt.Sprintf("  - %s: %s", key, detailString(f.Details[key]))
				pdf.MultiCell(0, 5, line, "", "L", false)
			}
		}

		if f.Remediation != "" {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.MultiCell(0, 5, "Remediation: "+f.Remediation, "", "L", false)
		}

		pdf.Ln(4)
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
