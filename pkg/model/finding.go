package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity classifies a finding. The order matters: Error and Critical
// invalidate a report, Info and Warning never do.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Invalidates reports whether an issue of this severity makes a report invalid.
func (s Severity) Invalidates() bool {
	return s >= SeverityError
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity is the inverse of Severity.String.
func ParseSeverity(raw string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", raw)
	}
}

// Category is the concern area a finding belongs to.
type Category string

const (
	CategoryService      Category = "Service"
	CategoryNetwork      Category = "Network"
	CategoryPort         Category = "Port"
	CategoryFirewall     Category = "Firewall"
	CategoryPortConflict Category = "PortConflict"
)

// Issue is a negative finding.
type Issue struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Success is a positive finding.
type Success struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
}
