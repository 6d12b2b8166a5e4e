package store

import (
	"errors"

	"instance-doctor/pkg/model"
)

// ReportStore keeps the latest FleetReport per host. It never keeps history:
// saving a report for a host replaces the previous one.
type ReportStore interface {
	SaveReport(model.FleetReport) error
	// LatestReport returns the report for host, or the most recently
	// evaluated report of any host when host is empty.
	LatestReport(host string) (model.FleetReport, bool, error)
	// ListReports returns the latest report of every host, ordered by host.
	ListReports() ([]model.FleetReport, error)
}

// DefaultHost is used for reports that carry no host name.
const DefaultHost = "_default"

var ErrNotConfigured = errors.New("store not configured")

// HostKey normalises the host a report is filed under.
func HostKey(host string) string {
	if host == "" {
		return DefaultHost
	}
	return host
}

// NewMemory is a helper to construct the in-memory implementation without importing it directly.
func NewMemory() ReportStore {
	return NewMemoryStore()
}

// Healths flattens the latest health checks of every host.
func Healths(s ReportStore) ([]model.HealthCheck, error) {
	reports, err := s.ListReports()
	if err != nil {
		return nil, err
	}
	out := make([]model.HealthCheck, 0)
	for _, r := range reports {
		out = append(out, r.Healths...)
	}
	return out, nil
}

func newest(reports []model.FleetReport) (model.FleetReport, bool) {
	var best model.FleetReport
	found := false
	for _, r := range reports {
		if !found || r.EvaluatedAt.After(best.EvaluatedAt) {
			best = r
			found = true
		}
	}
	return best, found
}
