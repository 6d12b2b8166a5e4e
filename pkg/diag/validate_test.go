package diag

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instance-doctor/pkg/model"
)

func healthySnapshot(id string, port int) model.InstanceSnapshot {
	return model.InstanceSnapshot{
		InstanceID:      id,
		Service:         model.ServiceRunning,
		Transports:      model.Transports{TCPIP: true},
		ConfiguredPorts: []int{port},
		PrimaryPort:     model.IntPtr(port),
		Firewall:        &model.FirewallState{Exists: true, Enabled: true},
	}
}

func issuesOf(r model.ValidationReport, c model.Category) []model.Issue {
	return r.IssuesIn(c)
}

func messages(r model.ValidationReport) []string {
	var out []string
	for _, s := range r.Successes {
		out = append(out, s.Message)
	}
	return out
}

func TestValidate_Healthy(t *testing.T) {
	r := Validate(healthySnapshot("SQLA", 14330))

	assert.True(t, r.IsValid)
	assert.Empty(t, r.Issues)
	assert.Equal(t, []string{
		"service is running",
		"TCP/IP protocol is enabled",
		"1 IP configuration(s) enabled",
		"primary port configured: 14330",
		"using custom port",
		"firewall rule exists for port 14330",
		"firewall rule is enabled",
	}, messages(r))
}

func TestValidate_Service(t *testing.T) {
	tests := []struct {
		name     string
		state    model.ServiceState
		message  string
		severity model.Severity
	}{
		{"stopped", model.ServiceStopped, "service is stopped", model.SeverityCritical},
		{"paused", model.ServiceState("Paused"), "service status is: Paused", model.SeverityError},
		{"unreadable", model.ServiceState(""), "service status is: Unknown", model.SeverityError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := healthySnapshot("SQLA", 14330)
			s.Service = tt.state
			r := Validate(s)

			got := issuesOf(r, model.CategoryService)
			require.Len(t, got, 1)
			assert.Equal(t, tt.message, got[0].Message)
			assert.Equal(t, tt.severity, got[0].Severity)
			assert.False(t, r.IsValid)
		})
	}
}

func TestValidate_StoppedAlwaysInvalid(t *testing.T) {
	variants := []model.InstanceSnapshot{
		healthySnapshot("A", 1433),
		{InstanceID: "B"},
		{InstanceID: "C", Transports: model.Transports{NamedPipes: true, SharedMemory: true}},
	}
	for _, s := range variants {
		s.Service = model.ServiceStopped
		r := Validate(s)
		assert.False(t, r.IsValid, s.InstanceID)

		critical := 0
		for _, issue := range issuesOf(r, model.CategoryService) {
			if issue.Severity == model.SeverityCritical {
				critical++
			}
		}
		assert.Equal(t, 1, critical, s.InstanceID)
	}
}

func TestValidate_Network(t *testing.T) {
	t.Run("no ip configurations", func(t *testing.T) {
		s := healthySnapshot("A", 14330)
		s.ConfiguredPorts = nil
		r := Validate(s)

		got := issuesOf(r, model.CategoryNetwork)
		require.Len(t, got, 1)
		assert.Equal(t, "TCP/IP is enabled but no IP addresses are configured", got[0].Message)
		assert.Equal(t, model.SeverityError, got[0].Severity)
		assert.False(t, r.IsValid)
	})

	t.Run("distinct positive ports are counted", func(t *testing.T) {
		s := healthySnapshot("A", 14330)
		s.ConfiguredPorts = []int{14330, 14330, 0, -1, 14331}
		r := Validate(s)
		assert.Contains(t, messages(r), "2 IP configuration(s) enabled")
	})

	t.Run("other transports", func(t *testing.T) {
		s := healthySnapshot("A", 14330)
		s.Transports.NamedPipes = true
		s.Transports.SharedMemory = true
		r := Validate(s)
		assert.Contains(t, messages(r), "Named Pipes is enabled")
		assert.Contains(t, messages(r), "Shared Memory is enabled")
		assert.Empty(t, r.Issues)
	})
}

func TestValidate_TCPDisabled(t *testing.T) {
	s := healthySnapshot("A", 1433)
	s.Transports.TCPIP = false
	r := Validate(s)

	for _, c := range []model.Category{model.CategoryPort, model.CategoryFirewall} {
		got := issuesOf(r, c)
		require.Len(t, got, 1, c)
		assert.Equal(t, model.SeverityInfo, got[0].Severity, c)
	}
	assert.Equal(t, "cannot validate port — TCP/IP is disabled", issuesOf(r, model.CategoryPort)[0].Message)
	assert.Equal(t, "cannot validate firewall — TCP/IP is disabled", issuesOf(r, model.CategoryFirewall)[0].Message)

	network := issuesOf(r, model.CategoryNetwork)
	require.Len(t, network, 1)
	assert.Equal(t, model.SeverityCritical, network[0].Severity)
	assert.False(t, r.IsValid)
}

func TestValidate_Port(t *testing.T) {
	t.Run("default port", func(t *testing.T) {
		r := Validate(healthySnapshot("A", 1433))
		got := issuesOf(r, model.CategoryPort)
		require.Len(t, got, 1)
		assert.Equal(t, "using default port 1433, consider a custom port", got[0].Message)
		assert.Equal(t, model.SeverityWarning, got[0].Severity)
		assert.True(t, r.IsValid)
	})

	t.Run("dynamic ports", func(t *testing.T) {
		for _, primary := range []*int{nil, model.IntPtr(0)} {
			s := healthySnapshot("A", 1433)
			s.PrimaryPort = primary
			r := Validate(s)

			port := issuesOf(r, model.CategoryPort)
			require.Len(t, port, 1)
			assert.Equal(t, "no static port configured (dynamic ports)", port[0].Message)
			assert.Equal(t, model.SeverityWarning, port[0].Severity)

			fw := issuesOf(r, model.CategoryFirewall)
			require.Len(t, fw, 1)
			assert.Equal(t, "cannot validate firewall — no static port configured", fw[0].Message)
			assert.Equal(t, model.SeverityInfo, fw[0].Severity)
			assert.True(t, r.IsValid)
		}
	})
}

func TestValidate_Firewall(t *testing.T) {
	tests := []struct {
		name     string
		firewall *model.FirewallState
		message  string
	}{
		{"not evaluated", nil, "no firewall rule found for port 14330"},
		{"missing", &model.FirewallState{}, "no firewall rule found for port 14330"},
		{"disabled", &model.FirewallState{Exists: true}, "firewall rule exists but is disabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := healthySnapshot("A", 14330)
			s.Firewall = tt.firewall
			r := Validate(s)

			got := issuesOf(r, model.CategoryFirewall)
			require.Len(t, got, 1)
			assert.Equal(t, tt.message, got[0].Message)
			assert.Equal(t, model.SeverityWarning, got[0].Severity)
			assert.True(t, r.IsValid)
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	s := model.InstanceSnapshot{
		InstanceID:      "A",
		Service:         model.ServiceState("StartPending"),
		Transports:      model.Transports{TCPIP: true, NamedPipes: true},
		ConfiguredPorts: []int{1433},
		PrimaryPort:     model.IntPtr(1433),
		Firewall:        &model.FirewallState{Exists: true},
	}
	if diff := cmp.Diff(Validate(s), Validate(s)); diff != "" {
		t.Fatalf("reports differ (-first +second):\n%s", diff)
	}
}
