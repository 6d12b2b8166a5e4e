// Package metrics exposes Prometheus metrics for fleet evaluations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"instance-doctor/pkg/model"
)

var (
	// EvaluationsTotal counts completed fleet evaluations.
	EvaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doctor_evaluations_total",
		Help: "Total number of completed fleet evaluations.",
	})

	InstancesEvaluatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doctor_instances_evaluated_total",
		Help: "Total number of instance snapshots evaluated.",
	})

	// IssuesTotal counts findings by category and severity. Labels stay
	// bounded; instance ids are never used as label values.
	IssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doctor_issues_total",
		Help: "Total number of issues reported, by category and severity.",
	}, []string{"category", "severity"})

	InstancesByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "doctor_instances",
		Help: "Instances in the latest evaluation, by health status.",
	}, []string{"status"})

	PortConflicts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "doctor_port_conflicts",
		Help: "Port conflicts found in the latest evaluation.",
	})

	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "doctor_evaluation_duration_seconds",
		Help:    "Wall time of a fleet evaluation.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	})
)

var statuses = []model.StatusLabel{
	model.StatusHealthy,
	model.StatusServiceNotRunning,
	model.StatusTCPIPDisabled,
	model.StatusFirewallIssue,
	model.StatusPortConflict,
	model.StatusConfigurationIssue,
}

// Recorder feeds evaluation results into the package metrics.
type Recorder struct{}

func (Recorder) ObserveEvaluation(report model.FleetReport, took time.Duration) {
	EvaluationsTotal.Inc()
	InstancesEvaluatedTotal.Add(float64(len(report.Reports)))
	EvaluationDuration.Observe(took.Seconds())

	for _, r := range report.Reports {
		for _, issue := range r.Issues {
			IssuesTotal.WithLabelValues(string(issue.Category), issue.Severity.String()).Inc()
		}
	}

	counts := make(map[model.StatusLabel]int, len(statuses))
	for _, h := range report.Healths {
		counts[h.Status]++
	}
	for _, s := range statuses {
		InstancesByStatus.WithLabelValues(string(s)).Set(float64(counts[s]))
	}
	PortConflicts.Set(float64(len(report.Conflicts)))
}
