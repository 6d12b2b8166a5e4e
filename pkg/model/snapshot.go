package model

import "strings"

// ServiceState is the observed run state of an instance's service.
// Anything other than Running or Stopped is carried verbatim; an empty
// value means the inspector could not read the state.
type ServiceState string

const (
	ServiceRunning ServiceState = "Running"
	ServiceStopped ServiceState = "Stopped"
	ServiceUnknown ServiceState = "Unknown"
)

// ParseServiceState maps a raw status string onto a ServiceState.
func ParseServiceState(raw string) ServiceState {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ServiceUnknown
	case strings.EqualFold(raw, string(ServiceRunning)):
		return ServiceRunning
	case strings.EqualFold(raw, string(ServiceStopped)):
		return ServiceStopped
	default:
		return ServiceState(raw)
	}
}

func (s ServiceState) IsRunning() bool { return ParseServiceState(string(s)) == ServiceRunning }
func (s ServiceState) IsStopped() bool { return ParseServiceState(string(s)) == ServiceStopped }

func (s ServiceState) String() string { return string(ParseServiceState(string(s))) }

// Transports lists which network transports are enabled for an instance.
type Transports struct {
	TCPIP        bool `json:"tcpIp" yaml:"tcpIp"`
	NamedPipes   bool `json:"namedPipes" yaml:"namedPipes"`
	SharedMemory bool `json:"sharedMemory" yaml:"sharedMemory"`
}

// FirewallState describes the firewall rule found for the primary port.
type FirewallState struct {
	Exists  bool `json:"exists" yaml:"exists"`
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// InstanceSnapshot is one instance's observed facts at evaluation time.
// PrimaryPort, when set, should be one of ConfiguredPorts while TCP/IP is
// enabled; callers are expected to keep that true.
type InstanceSnapshot struct {
	InstanceID      string         `json:"instanceId" yaml:"instanceId"`
	Service         ServiceState   `json:"serviceState" yaml:"serviceState"`
	Transports      Transports     `json:"transports" yaml:"transports"`
	ConfiguredPorts []int          `json:"configuredPorts,omitempty" yaml:"configuredPorts,omitempty"`
	PrimaryPort     *int           `json:"primaryPort,omitempty" yaml:"primaryPort,omitempty"`
	Firewall        *FirewallState `json:"firewall,omitempty" yaml:"firewall,omitempty"`
}

// Port returns the static primary port, or 0 for dynamic allocation.
func (s InstanceSnapshot) Port() int {
	if s.PrimaryPort == nil || *s.PrimaryPort < 0 {
		return 0
	}
	return *s.PrimaryPort
}

// EnabledPorts returns the distinct positive configured ports in input order.
func (s InstanceSnapshot) EnabledPorts() []int {
	out := make([]int, 0, len(s.ConfiguredPorts))
	seen := make(map[int]bool, len(s.ConfiguredPorts))
	for _, p := range s.ConfiguredPorts {
		if p <= 0 || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// IntPtr is a small helper for building snapshots with a static port.
func IntPtr(v int) *int { return &v }
