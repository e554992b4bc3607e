package report

import "sort"

// Finding is one discrete observation produced by a probe module.
// Modules never mutate a finding after emitting it.
type Finding struct {
	Category    string         `json:"type"`
	Severity    Severity       `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
	Remediation string         `json:"remediation,omitempty"`
}

// Stats holds per-severity counts for one finding sequence.
// VulnerabilitiesFound counts critical, high and medium findings.
type Stats struct {
	Critical             int `json:"critical"`
	High                 int `json:"high"`
	Medium               int `json:"medium"`
	Low                  int `json:"low"`
	Info                 int `json:"info"`
	VulnerabilitiesFound int `json:"vulnerabilities_found"`
}

// ComputeStats counts severities over the full finding sequence.
// It always recounts from scratch so repeated calls stay idempotent.
func ComputeStats(findings []Finding) Stats {
	var stats Stats
	for _, f := range findings {
		switch f.Severity.Normalize() {
		case SeverityCritical:
			stats.Critical++
		case SeverityHigh:
			stats.High++
		case SeverityMedium:
			stats.Medium++
		case SeverityLow:
			stats.Low++
		case SeverityInfo:
			stats.Info++
		}
	}
	stats.VulnerabilitiesFound = stats.Critical + stats.High + stats.Medium
	return stats
}

// SortBySeverity returns a copy of findings ordered highest severity first.
// Ordering within one severity level is preserved.
func SortBySeverity(findings []Finding) []Finding {
	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Normalize().Score() > sorted[j].Severity.Normalize().Score()
	})
	return sorted
}
