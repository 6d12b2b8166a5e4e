package render

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instance-doctor/pkg/model"
)

func init() {
	color.NoColor = true
}

func sampleFleet() model.FleetReport {
	a := model.NewValidationReport("MSSQLSERVER")
	a.AddSuccess(model.CategoryService, "service is running")
	a.AddIssue(model.CategoryFirewall, "no firewall rule found for port 1433", model.SeverityWarning)
	a.AddIssue(model.CategoryPortConflict, "port 1433 used by: MSSQLSERVER, OTHER", model.SeverityCritical)
	return model.FleetReport{
		RunID:       "run-1",
		Host:        "db01",
		EvaluatedAt: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		Reports:     []model.ValidationReport{a},
		Healths: []model.HealthCheck{{
			InstanceID:           "MSSQLSERVER",
			PrimaryPort:          1433,
			ConflictingInstances: []string{"OTHER"},
			Status:               model.StatusFirewallIssue,
		}},
		Conflicts: []model.PortConflict{{Port: 1433, InstanceIDs: []string{"MSSQLSERVER", "OTHER"}}},
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleFleet(), Options{Successes: true, Suggestions: true}))
	out := buf.String()

	assert.Contains(t, out, "Host: db01")
	assert.Contains(t, out, "MSSQLSERVER  INVALID  Firewall Issue")
	assert.Contains(t, out, "[warning] Firewall: no firewall rule found for port 1433")
	assert.Contains(t, out, `"SQL Server MSSQLSERVER - Port 1433"`)
	assert.Contains(t, out, "[critical] PortConflict: port 1433 used by: MSSQLSERVER, OTHER")
	assert.Contains(t, out, "Move this instance or OTHER to a different static port")
	assert.Contains(t, out, "[ok] Service: service is running")
	assert.Contains(t, out, "Port conflicts:")
}

func TestText_Quiet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleFleet(), Options{}))
	assert.NotContains(t, buf.String(), "[ok]")
	assert.NotContains(t, buf.String(), "->")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleFleet()))

	var back model.FleetReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "run-1", back.RunID)
	assert.Equal(t, model.SeverityCritical, back.Reports[0].Issues[1].Severity)
}

func TestSuggestions(t *testing.T) {
	h := model.HealthCheck{InstanceID: "SQLA", PrimaryPort: 14330}
	tests := []struct {
		name  string
		issue model.Issue
		want  string
	}{
		{"stopped", model.Issue{Category: model.CategoryService, Message: "service is stopped"}, "Start the service for instance SQLA"},
		{"tcp off", model.Issue{Category: model.CategoryNetwork, Message: "TCP/IP protocol is disabled"}, "Enable the TCP/IP protocol in the instance network configuration"},
		{"dynamic", model.Issue{Category: model.CategoryPort, Message: "no static port configured (dynamic ports)"}, "Clear the dynamic ports setting and assign a static TCP port"},
		{"fw disabled", model.Issue{Category: model.CategoryFirewall, Message: "firewall rule exists but is disabled"}, "Enable the inbound firewall rule for port 14330"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggestions(h, tt.issue)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.want, got[0])
		})
	}

	info := model.Issue{Category: model.CategoryPort, Message: "cannot validate port — TCP/IP is disabled"}
	assert.Empty(t, Suggestions(h, info))
}

func TestSuggestions_InfoFirewall(t *testing.T) {
	h := model.HealthCheck{InstanceID: "SQLA"}
	issue := model.Issue{Category: model.CategoryFirewall, Message: "cannot validate firewall — TCP/IP is disabled", Severity: model.SeverityInfo}
	assert.Empty(t, Suggestions(h, issue))
}
