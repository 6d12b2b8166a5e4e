// Package render turns fleet reports into terminal or JSON output.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"instance-doctor/pkg/model"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	hiRed  = color.New(color.FgHiRed, color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func severityTag(s model.Severity) string {
	tag := fmt.Sprintf("[%s]", s)
	switch s {
	case model.SeverityCritical:
		return hiRed(tag)
	case model.SeverityError:
		return red(tag)
	case model.SeverityWarning:
		return yellow(tag)
	default:
		return cyan(tag)
	}
}

func statusText(h model.HealthCheck) string {
	if h.IsHealthy {
		return green(string(h.Status))
	}
	if h.Status == model.StatusServiceNotRunning || h.Status == model.StatusTCPIPDisabled {
		return red(string(h.Status))
	}
	return yellow(string(h.Status))
}

// Options tune text output.
type Options struct {
	Successes   bool // list successful checks
	Suggestions bool // list remediation hints under issues
}

// Text writes a human readable report.
func Text(w io.Writer, fleet model.FleetReport, opts Options) error {
	pw := &printer{w: w}
	if fleet.Host != "" {
		pw.printf("%s %s\n", bold("Host:"), fleet.Host)
	}
	pw.printf("%s %s  %s\n\n", bold("Run:"), fleet.RunID, faint(fleet.EvaluatedAt.Format("2006-01-02 15:04:05Z07:00")))

	for i, r := range fleet.Reports {
		var h model.HealthCheck
		if i < len(fleet.Healths) {
			h = fleet.Healths[i]
		}
		valid := green("VALID")
		if !r.IsValid {
			valid = red("INVALID")
		}
		pw.printf("%s  %s  %s\n", bold(r.InstanceID), valid, statusText(h))
		if h.PrimaryPort > 0 {
			pw.printf("  port %d", h.PrimaryPort)
		} else {
			pw.printf("  dynamic ports")
		}
		pw.printf("  issues: %d critical, %d errors, %d warnings\n",
			r.Count(model.SeverityCritical), r.Count(model.SeverityError), r.Count(model.SeverityWarning))

		for _, issue := range r.Issues {
			pw.printf("  %s %s: %s\n", severityTag(issue.Severity), issue.Category, issue.Message)
			if !opts.Suggestions {
				continue
			}
			for _, s := range Suggestions(h, issue) {
				pw.printf("      %s %s\n", faint("->"), s)
			}
		}
		if opts.Successes {
			for _, s := range r.Successes {
				pw.printf("  %s %s: %s\n", green("[ok]"), s.Category, s.Message)
			}
		}
		pw.printf("\n")
	}

	if len(fleet.Conflicts) > 0 {
		pw.printf("%s\n", bold("Port conflicts:"))
		for _, c := range fleet.Conflicts {
			pw.printf("  %s\n", red(c.Issue().Message))
		}
	}
	return pw.err
}

// JSON writes the report as indented JSON.
func JSON(w io.Writer, fleet model.FleetReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fleet)
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
