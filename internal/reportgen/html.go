package reportgen

import (
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/websectester/websectester/internal/scanner"
)

type htmlFinding struct {
	Severity    string
	Title       string
	Description string
	Category    string
	Details     []htmlDetail
	Remediation string
}

type htmlDetail struct {
	Key   string
	Value string
}

type htmlReportData struct {
	TargetURL string
	Generated string
	ScanID    string
	Status    string
	StartTime string
	EndTime   string
	Critical  int
	High      int
	Medium    int
	Low       int
	Info      int
	Total     int
	Findings  []htmlFinding
}

func writeHTML(path string, rec scanner.Record) error {
	data := htmlReportData{
		TargetURL: rec.TargetURL,
		Generated: time.Now().Format("2006-01-02 15:04:05"),
		ScanID:    rec.ScanID,
		Status:    string(rec.Status),
		StartTime: rec.StartTime,
		EndTime:   rec.EndTime,
		Critical:  rec.Stats.Critical,
		High:      rec.Stats.High,
		Medium:    rec.Stats.Medium,
		Low:       rec.Stats.Low,
		Info:      rec.Stats.Info,
		Total:     len(rec.Findings),
	}

	for _, f := range sortedFindings(rec) {
		hf := htmlFinding{
			Severity:    string(f.Severity.Normalize()),
			Title:       f.Title,
			Description: f.Description,
			Category:    f.Category,
			Remediation: f.Remediation,
		}
		for _, key := range sortedDetailKeys(f.Details) {
			hf.Details = append(hf.Details, htmlDetail{Key: key, Value: detailString(f.Details[key])})
		}
		data.Findings = append(data.Findings, hf)
	}

	t, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := t.Execute(f, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Security Scan Report - {{.TargetURL}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            line-height: 1.6;
            color: #333;
            background: #f5f5f5;
        }
        .container { max-width: 1200px; margin: 0 auto; padding: 20px; }
        .header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white;
            padding: 40px;
            border-radius: 10px;
            margin-bottom: 30px;
            box-shadow: 0 4px 6px rgba(0,0,0,0.1);
        }
        .header h1 { font-size: 2.5em; margin-bottom: 10px; }
        .summary-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 20px;
            margin-bottom: 30px;
        }
        .summary-card {
            background: white;
            padding: 25px;
            border-radius: 10px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
            text-align: center;
        }
        .summary-card.critical { border-top: 4px solid #d32f2f; }
        .summary-card.high { border-top: 4px solid #f57c00; }
        .summary-card.medium { border-top: 4px solid #fbc02d; }
        .summary-card.low { border-top: 4px solid #689f38; }
        .summary-card.info { border-top: 4px solid #1976d2; }
        .count { font-size: 2.5em; font-weight: bold; margin: 10px 0; }
        .critical .count { color: #d32f2f; }
        .high .count { color: #f57c00; }
        .medium .count { color: #fbc02d; }
        .low .count { color: #689f38; }
        .info .count { color: #1976d2; }
        .findings-section { background: white; padding: 30px; border-radius: 10px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .finding {
            border-left: 4px solid #ddd;
            padding: 20px;
            margin-bottom: 20px;
            background: #fafafa;
            border-radius: 0 5px 5px 0;
        }
        .finding.critical { border-left-color: #d32f2f; background: #ffebee; }
        .finding.high { border-left-color: #f57c00; background: #fff3e0; }
        .finding.medium { border-left-color: #fbc02d; background: #fffde7; }
        .finding.low { border-left-color: #689f38; background: #f1f8e9; }
        .finding.info { border-left-color: #1976d2; background: #e3f2fd; }
        .finding-header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 10px;
        }
        .finding-title { font-size: 1.2em; font-weight: bold; }
        .severity-badge {
            padding: 5px 15px;
            border-radius: 20px;
            color: white;
            font-weight: bold;
            text-transform: uppercase;
            font-size: 0.8em;
        }
        .severity-badge.critical { background: #d32f2f; }
        .severity-badge.high { background: #f57c00; }
        .severity-badge.medium { background: #fbc02d; color: #333; }
        .severity-badge.low { background: #689f38; }
        .severity-badge.info { background: #1976d2; }
        .finding-description { margin: 10px 0; color: #555; }
        .finding-details {
            background: white;
            padding: 15px;
            border-radius: 5px;
            margin-top: 10px;
            font-family: monospace;
            font-size: 0.9em;
        }
        .remediation {
            background: #e8f5e9;
            padding: 15px;
            border-radius: 5px;
            margin-top: 10px;
            border-left: 3px solid #4caf50;
        }
        .metadata {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 15px;
            margin-top: 30px;
            background: white;
            padding: 20px;
            border-radius: 10px;
        }
        .metadata-item { display: flex; justify-content: space-between; }
        .metadata-label { font-weight: bold; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Web Application Security Report</h1>
            <p>Target: {{.TargetURL}}</p>
            <p>Generated: {{.Generated}}</p>
        </div>

        <div class="summary-grid">
            <div class="summary-card critical">
                <div class="label">Critical</div>
                <div class="count">{{.Critical}}</div>
            </div>
            <div class="summary-card high">
                <div class="label">High</div>
                <div class="count">{{.High}}</div>
            </div>
            <div class="summary-card medium">
                <div class="label">Medium</div>
                <div class="count">{{.Medium}}</div>
            </div>
            <div class="summary-card low">
                <div class="label">Low</div>
                <div class="count">{{.Low}}</div>
            </div>
        </div>

        <div class="findings-section">
            <h2>Detailed Findings ({{.Total}} total)</h2>
{{range .Findings}}
            <div class="finding {{.Severity}}">
                <div class="finding-header">
                    <div class="finding-title">{{.Title}}</div>
                    <span class="severity-badge {{.Severity}}">{{.Severity}}</span>
                </div>
                <div class="finding-description">{{.Description}}</div>
                <div class="finding-details">
                    <strong>Type:</strong> {{.Category}}<br>
{{range .Details}}                    <strong>{{.Key}}:</strong> {{.Value}}<br>
{{end}}                </div>
{{if .Remediation}}
                <div class="remediation">
                    <strong>Remediation:</strong> {{.Remediation}}
                </div>
{{end}}
            </div>
{{end}}
        </div>

        <div class="metadata">
            <div class="metadata-item">
                <span class="metadata-label">Scan ID:</span>
                <span>{{.ScanID}}</span>
            </div>
            <div class="metadata-item">
                <span class="metadata-label">Status:</span>
                <span>{{.Status}}</span>
            </div>
            <div class="metadata-item">
                <span class="metadata-label">Start Time:</span>
                <span>{{.StartTime}}</span>
            </div>
            <div class="metadata-item">
                <span class="metadata-label">End Time:</span>
                <span>{{.EndTime}}</span>
            </div>
        </div>
    </div>
</body>
</html>
`
