package model

import (
	"fmt"
	"strings"
	"time"
)

// PortConflict is a static port bound by more than one instance.
// InstanceIDs keep the order in which the instances were supplied.
type PortConflict struct {
	Port        int      `json:"port"`
	InstanceIDs []string `json:"instanceIds"`
}

// Issue renders the conflict as the critical finding attached to every member.
func (c PortConflict) Issue() Issue {
	return Issue{
		Category: CategoryPortConflict,
		Message:  fmt.Sprintf("port %d used by: %s", c.Port, strings.Join(c.InstanceIDs, ", ")),
		Severity: SeverityCritical,
	}
}

// Others returns the members of the conflict other than instanceID.
func (c PortConflict) Others(instanceID string) []string {
	out := make([]string, 0, len(c.InstanceIDs))
	for _, id := range c.InstanceIDs {
		if id != instanceID {
			out = append(out, id)
		}
	}
	return out
}

// FleetReport is the result of one evaluation pass. Reports and Healths are
// index-aligned with the snapshots that produced them.
type FleetReport struct {
	RunID       string             `json:"runId"`
	Host        string             `json:"host,omitempty"`
	EvaluatedAt time.Time          `json:"evaluatedAt"`
	Reports     []ValidationReport `json:"reports"`
	Healths     []HealthCheck      `json:"healths"`
	Conflicts   []PortConflict     `json:"conflicts"`
}

// Instance looks up the report and health of one instance.
func (f FleetReport) Instance(instanceID string) (ValidationReport, HealthCheck, bool) {
	for i := range f.Reports {
		if f.Reports[i].InstanceID == instanceID {
			var h HealthCheck
			if i < len(f.Healths) {
				h = f.Healths[i]
			}
			return f.Reports[i], h, true
		}
	}
	return ValidationReport{}, HealthCheck{}, false
}

// AllValid reports whether every instance report is valid.
func (f FleetReport) AllValid() bool {
	for _, r := range f.Reports {
		if !r.IsValid {
			return false
		}
	}
	return true
}
