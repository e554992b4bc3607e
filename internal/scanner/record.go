package scanner

import (
	"time"

	"github.com/websectester/websectester/internal/report"
)

// Status is the lifecycle state of a scan.
type Status string

const (
	// StatusRunning covers a scan from submission until the pipeline ends.
	StatusRunning Status = "running"

	// StatusCompleted means the pipeline finished. Individual probe
	// failures do not prevent completion; they appear as findings.
	StatusCompleted Status = "completed"

	// StatusError is reserved for orchestration faults, not probe faults.
	StatusError Status = "error"
)

// Record is the full state of one scan. A record has a single writer, the
// scan goroutine; readers always receive a clone.
type Record struct {
	ScanID         string           `json:"scan_id"`
	TargetURL      string           `json:"target_url"`
	Status         Status           `json:"status"`
	StartTime      string           `json:"start_time"`
	EndTime        string           `json:"end_time,omitempty"`
	ScanTypes      []string         `json:"scan_types"`
	Findings       []report.Finding `json:"findings"`
	Stats          report.Stats     `json:"stats"`
	CurrentMessage string           `json:"current_message,omitempty"`
	LastUpdate     string           `json:"last_update,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// Clone copies the record deeply enough that the caller can hold it after
// the registry lock is released.
func (r *Record) Clone() Record {
	out := *r
	out.ScanTypes = append([]string(nil), r.ScanTypes...)
	out.Findings = append([]report.Finding(nil), r.Findings...)
	return out
}

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}
