package diag

import "instance-doctor/pkg/model"

type statusRule struct {
	status model.StatusLabel
	match  func(model.HealthCheck) bool
}

// statusRules are checked top to bottom; the first match names the status.
var statusRules = []statusRule{
	{model.StatusHealthy, func(h model.HealthCheck) bool { return h.IsHealthy }},
	{model.StatusServiceNotRunning, func(h model.HealthCheck) bool { return !h.ServiceRunning }},
	{model.StatusTCPIPDisabled, func(h model.HealthCheck) bool { return !h.TCPIPEnabled }},
	{model.StatusFirewallIssue, func(h model.HealthCheck) bool { return !h.FirewallRuleExists || !h.FirewallRuleEnabled }},
	{model.StatusPortConflict, func(h model.HealthCheck) bool { return h.HasPortConflicts }},
}

// DeriveHealth builds the health view of one instance. hasPortConflicts comes
// from the fleet-wide conflict pass.
func DeriveHealth(s model.InstanceSnapshot, hasPortConflicts bool) model.HealthCheck {
	h := model.HealthCheck{
		InstanceID:       s.InstanceID,
		ServiceRunning:   s.Service.IsRunning(),
		TCPIPEnabled:     s.Transports.TCPIP,
		PrimaryPort:      s.Port(),
		ConfiguredPorts:  s.EnabledPorts(),
		HasPortConflicts: hasPortConflicts,
	}
	if h.PrimaryPort > 0 && s.Firewall != nil {
		h.FirewallRuleExists = s.Firewall.Exists
		h.FirewallRuleEnabled = s.Firewall.Enabled
	}
	h.IsHealthy = h.ServiceRunning &&
		h.TCPIPEnabled &&
		h.PrimaryPort > 0 &&
		h.FirewallRuleExists &&
		h.FirewallRuleEnabled &&
		!h.HasPortConflicts
	h.Status = statusFor(h)
	return h
}

func statusFor(h model.HealthCheck) model.StatusLabel {
	for _, rule := range statusRules {
		if rule.match(h) {
			return rule.status
		}
	}
	return model.StatusConfigurationIssue
}
