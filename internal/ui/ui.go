package ui

import "github.com/websectester/websectester/internal/report"

const (
	ColorReset  = "\033[0m"
	ColorGray   = "\033[90m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[91m"
	ColorGreen  = "\033[92m"
	ColorYellow = "\033[93m"

	ColorInfo     = "\033[37m"
	ColorLow      = "\033[34m"
	ColorMedium   = "\033[33m"
	ColorHigh     = "\033[31m"
	ColorCritical = "\033[35m"
)

// SeverityColor maps a severity to its console color.
func SeverityColor(s report.Severity) string {
	switch s.Normalize() {
	case report.SeverityCritical:
		return ColorCritical
	case report.SeverityHigh:
		return ColorHigh
	case report.SeverityMedium:
		return ColorMedium
	case report.SeverityLow:
		return ColorLow
	default:
		return ColorInfo
	}
}
