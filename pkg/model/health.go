package model

// StatusLabel is the single human-facing health label of an instance.
type StatusLabel string

const (
	StatusHealthy            StatusLabel = "Healthy"
	StatusServiceNotRunning  StatusLabel = "Service Not Running"
	StatusTCPIPDisabled      StatusLabel = "TCP/IP Disabled"
	StatusFirewallIssue      StatusLabel = "Firewall Issue"
	StatusPortConflict       StatusLabel = "Port Conflict"
	StatusConfigurationIssue StatusLabel = "Configuration Issue"
)

// HealthCheck is the traffic-light view of an instance. It is narrower than
// ValidationReport and is rebuilt on every evaluation.
type HealthCheck struct {
	InstanceID           string      `json:"instanceId"`
	ServiceRunning       bool        `json:"serviceRunning"`
	TCPIPEnabled         bool        `json:"tcpIpEnabled"`
	PrimaryPort          int         `json:"primaryPort"`
	ConfiguredPorts      []int       `json:"configuredPorts"`
	FirewallRuleExists   bool        `json:"firewallRuleExists"`
	FirewallRuleEnabled  bool        `json:"firewallRuleEnabled"`
	HasPortConflicts     bool        `json:"hasPortConflicts"`
	ConflictingInstances []string    `json:"conflictingInstances,omitempty"`
	IsHealthy            bool        `json:"isHealthy"`
	Status               StatusLabel `json:"status"`
}
