package diag

import (
	"fmt"

	"instance-doctor/pkg/model"
)

const defaultPort = 1433

type check struct {
	name string
	run  func(model.InstanceSnapshot, *model.ValidationReport)
}

// validationChecks run in this order; report findings keep it.
var validationChecks = []check{
	{name: "service", run: checkService},
	{name: "network", run: checkNetwork},
	{name: "port", run: checkPort},
	{name: "firewall", run: checkFirewall},
}

// Validate evaluates a single snapshot in isolation. It does not know about
// the rest of the fleet, so port conflicts are never reported here.
func Validate(s model.InstanceSnapshot) model.ValidationReport {
	report := model.NewValidationReport(s.InstanceID)
	for _, c := range validationChecks {
		c.run(s, &report)
	}
	return report
}

func checkService(s model.InstanceSnapshot, r *model.ValidationReport) {
	switch {
	case s.Service.IsRunning():
		r.AddSuccess(model.CategoryService, "service is running")
	case s.Service.IsStopped():
		r.AddIssue(model.CategoryService, "service is stopped", model.SeverityCritical)
	default:
		r.AddIssue(model.CategoryService, fmt.Sprintf("service status is: %s", s.Service), model.SeverityError)
	}
}

func checkNetwork(s model.InstanceSnapshot, r *model.ValidationReport) {
	if s.Transports.TCPIP {
		r.AddSuccess(model.CategoryNetwork, "TCP/IP protocol is enabled")
		if n := len(s.EnabledPorts()); n > 0 {
			r.AddSuccess(model.CategoryNetwork, fmt.Sprintf("%d IP configuration(s) enabled", n))
		} else {
			r.AddIssue(model.CategoryNetwork, "TCP/IP is enabled but no IP addresses are configured", model.SeverityError)
		}
	} else {
		r.AddIssue(model.CategoryNetwork, "TCP/IP protocol is disabled", model.SeverityCritical)
	}

	if s.Transports.NamedPipes {
		r.AddSuccess(model.CategoryNetwork, "Named Pipes is enabled")
	}
	if s.Transports.SharedMemory {
		r.AddSuccess(model.CategoryNetwork, "Shared Memory is enabled")
	}
}

func checkPort(s model.InstanceSnapshot, r *model.ValidationReport) {
	if !s.Transports.TCPIP {
		r.AddIssue(model.CategoryPort, "cannot validate port — TCP/IP is disabled", model.SeverityInfo)
		return
	}
	port := s.Port()
	if port == 0 {
		r.AddIssue(model.CategoryPort, "no static port configured (dynamic ports)", model.SeverityWarning)
		return
	}
	r.AddSuccess(model.CategoryPort, fmt.Sprintf("primary port configured: %d", port))
	if port == defaultPort {
		r.AddIssue(model.CategoryPort, "using default port 1433, consider a custom port", model.SeverityWarning)
	} else {
		r.AddSuccess(model.CategoryPort, "using custom port")
	}
}

func checkFirewall(s model.InstanceSnapshot, r *model.ValidationReport) {
	if !s.Transports.TCPIP {
		r.AddIssue(model.CategoryFirewall, "cannot validate firewall — TCP/IP is disabled", model.SeverityInfo)
		return
	}
	port := s.Port()
	if port == 0 {
		r.AddIssue(model.CategoryFirewall, "cannot validate firewall — no static port configured", model.SeverityInfo)
		return
	}
	if s.Firewall == nil || !s.Firewall.Exists {
		r.AddIssue(model.CategoryFirewall, fmt.Sprintf("no firewall rule found for port %d", port), model.SeverityWarning)
		return
	}
	r.AddSuccess(model.CategoryFirewall, fmt.Sprintf("firewall rule exists for port %d", port))
	if s.Firewall.Enabled {
		r.AddSuccess(model.CategoryFirewall, "firewall rule is enabled")
	} else {
		r.AddIssue(model.CategoryFirewall, "firewall rule exists but is disabled", model.SeverityWarning)
	}
}
