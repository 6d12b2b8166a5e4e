package render

import (
	"fmt"
	"strings"

	"instance-doctor/pkg/model"
)

// FirewallRuleName is the inbound rule name operators are told to create
// for an instance's primary port.
func FirewallRuleName(instanceID string, port int) string {
	return fmt.Sprintf("SQL Server %s - Port %d", instanceID, port)
}

// Suggestions maps an issue to remediation hints for the operator. They are
// text only; nothing here changes the instance.
func Suggestions(h model.HealthCheck, issue model.Issue) []string {
	msg := issue.Message
	switch issue.Category {
	case model.CategoryService:
		if msg == "service is stopped" {
			return []string{
				fmt.Sprintf("Start the service for instance %s", h.InstanceID),
				"Set the service start mode to Automatic if it should survive reboots",
			}
		}
		return []string{
			"Wait for the pending state change to finish, then re-run the check",
			"Review the service event log if the state does not settle",
		}
	case model.CategoryNetwork:
		switch {
		case strings.HasPrefix(msg, "TCP/IP protocol is disabled"):
			return []string{
				"Enable the TCP/IP protocol in the instance network configuration",
				"Restart the service to apply the protocol change",
			}
		case strings.Contains(msg, "no IP addresses are configured"):
			return []string{"Enable at least one IP address entry and give it a TCP port"}
		}
	case model.CategoryPort:
		switch {
		case strings.HasPrefix(msg, "using default port"):
			return []string{"Assign a custom static port to reduce exposure to default-port scans"}
		case strings.HasPrefix(msg, "no static port"):
			return []string{
				"Clear the dynamic ports setting and assign a static TCP port",
				"Static ports allow a fixed firewall rule",
			}
		}
	case model.CategoryFirewall:
		switch {
		case strings.HasPrefix(msg, "no firewall rule found"):
			return []string{fmt.Sprintf("Create an inbound TCP allow rule %q for port %d",
				FirewallRuleName(h.InstanceID, h.PrimaryPort), h.PrimaryPort)}
		case msg == "firewall rule exists but is disabled":
			return []string{fmt.Sprintf("Enable the inbound firewall rule for port %d", h.PrimaryPort)}
		}
	case model.CategoryPortConflict:
		others := strings.Join(h.ConflictingInstances, ", ")
		return []string{
			fmt.Sprintf("Move this instance or %s to a different static port", others),
			"Only one instance can listen on a port once both are running",
		}
	}
	return nil
}
