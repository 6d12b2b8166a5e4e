package model

import "fmt"

// ValidationReport aggregates the findings for one instance. Issues and
// Successes keep insertion order, which is evaluation order.
type ValidationReport struct {
	InstanceID string    `json:"instanceId"`
	IsValid    bool      `json:"isValid"`
	Issues     []Issue   `json:"issues"`
	Successes  []Success `json:"successes"`
}

// NewValidationReport returns an empty, valid report.
func NewValidationReport(instanceID string) ValidationReport {
	return ValidationReport{
		InstanceID: instanceID,
		IsValid:    true,
		Issues:     []Issue{},
		Successes:  []Success{},
	}
}

// AddIssue records an issue. Once an Error or Critical issue is added the
// report stays invalid.
func (r *ValidationReport) AddIssue(category Category, message string, severity Severity) {
	r.Issues = append(r.Issues, Issue{Category: category, Message: message, Severity: severity})
	if severity.Invalidates() {
		r.IsValid = false
	}
}

func (r *ValidationReport) AddSuccess(category Category, message string) {
	r.Successes = append(r.Successes, Success{Category: category, Message: message})
}

// Count returns the number of issues with exactly the given severity.
func (r ValidationReport) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

// IssuesIn returns the issues of one category in insertion order.
func (r ValidationReport) IssuesIn(category Category) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Category == category {
			out = append(out, issue)
		}
	}
	return out
}

// Summary renders a short multi-line digest of the report.
func (r ValidationReport) Summary() string {
	status := "VALID"
	if !r.IsValid {
		status = "INVALID"
	}
	return fmt.Sprintf("Instance: %s\nStatus: %s\nIssues: %d Critical, %d Errors, %d Warnings\nSuccesses: %d",
		r.InstanceID,
		status,
		r.Count(SeverityCritical),
		r.Count(SeverityError),
		r.Count(SeverityWarning),
		len(r.Successes))
}
