package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/mlgruby/nixmedic/health"
	"github.com/mlgruby/nixmedic/report"
)

// printSummary renders one run as a terminal table: per-task rows for a
// maintenance run, per-measurement rows otherwise.
func printSummary(w io.Writer, rec *report.RunRecord) error {
	table := tablewriter.NewWriter(w)

	if rec.Mode == report.ModeMaintain {
		table.Header("Task", "State", "Duration")
		for _, tr := range rec.TaskResults {
			state := "ok"
			switch {
			case tr.Skipped:
				state = "skipped"
			case !tr.Succeeded:
				state = "failed"
			}
			table.Append(tr.Task, state, tr.Duration.String())
		}
		return table.Render()
	}

	table.Header("Probe", "Value", "State")
	for _, m := range rec.Measurements {
		table.Append(m.Probe, formatValue(m), measurementState(m, rec.Issues))
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "overall: %s (%d issue(s))\n", rec.Status, len(rec.Issues))
	return err
}

func formatValue(m health.Measurement) string {
	if m.Unavailable {
		return "n/a"
	}
	switch m.Kind {
	case health.KindPercent:
		return fmt.Sprintf("%.1f%%", m.Value)
	case health.KindBool:
		if m.Up() {
			return "up"
		}
		return "down"
	default:
		return fmt.Sprintf("%.2f", m.Value)
	}
}

func measurementState(m health.Measurement, issues []health.Issue) string {
	if m.Unavailable {
		return "unavailable"
	}
	for _, issue := range issues {
		if issue.Probe == m.Probe {
			return strings.ToUpper(issue.Severity.String())
		}
	}
	return "ok"
}
