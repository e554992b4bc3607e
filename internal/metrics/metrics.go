// Package metrics exposes the process counters served on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScansStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websectester_scans_started_total",
		Help: "Number of scans submitted to the orchestrator.",
	})

	ScansCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websectester_scans_completed_total",
		Help: "Number of scans that ran the full pipeline.",
	})

	ScansFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websectester_scans_failed_total",
		Help: "Number of scans aborted by an orchestration fault.",
	})

	ModulePanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websectester_module_panics_total",
		Help: "Number of probe modules recovered after a panic.",
	})

	PersistenceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websectester_history_persistence_failures_total",
		Help: "Number of failed scan history writes.",
	})

	FindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websectester_findings_total",
		Help: "Findings recorded by completed scans, by severity.",
	}, []string{"severity"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
