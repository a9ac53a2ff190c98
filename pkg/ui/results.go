package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/godseye/godseye/pkg/aggregate"
	"github.com/godseye/godseye/pkg/capture"
	"github.com/godseye/godseye/pkg/diff"
)

// severityOrder is the display order for the summary rollup.
var severityOrder = []diff.Severity{
	diff.SeverityCritical,
	diff.SeverityHigh,
	diff.SeverityMedium,
	diff.SeverityLow,
	diff.SeverityNone,
	diff.SeverityNew,
}

// Summary prints the end-of-run rollup and, when a baseline was diffed,
// every target that changed.
func Summary(w io.Writer, records []*aggregate.Record, sum aggregate.Summary, elapsed string) {
	fmt.Fprintln(w, SectionStyle.Render("Scan complete"))
	fmt.Fprintf(w, "  %s %s\n", ConfigLabelStyle.Render("elapsed"), ConfigValueStyle.Render(elapsed))
	fmt.Fprintf(w, "  %s %s\n", ConfigLabelStyle.Render("captured"),
		SuccessStyle.Render(fmt.Sprintf("%d/%d", sum.Succeeded, sum.Total)))
	if len(sum.ByStatus) > 0 {
		var parts []string
		for _, class := range []string{"2xx", "3xx", "4xx", "5xx"} {
			if n := sum.ByStatus[class]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s:%d", class, n))
			}
		}
		fmt.Fprintf(w, "  %s %s\n", ConfigLabelStyle.Render("status"),
			ConfigValueStyle.Render(strings.Join(parts, " ")))
	}
	if sum.Failed > 0 {
		fmt.Fprintf(w, "  %s %s\n", ConfigLabelStyle.Render("failed"),
			ErrorStyle.Render(fmt.Sprintf("%d", sum.Failed)))
	}
	if sum.Skipped > 0 {
		fmt.Fprintf(w, "  %s %s\n", ConfigLabelStyle.Render("skipped"),
			MutedStyle.Render(fmt.Sprintf("%d", sum.Skipped)))
	}
	if sum.Resumed > 0 {
		fmt.Fprintf(w, "  %s %s\n", ConfigLabelStyle.Render("resumed"),
			MutedStyle.Render(fmt.Sprintf("%d", sum.Resumed)))
	}

	if sum.Diffed > 0 {
		fmt.Fprintln(w, SectionStyle.Render("Changes vs baseline"))
		for _, sev := range severityOrder {
			if n := sum.BySeverity[sev]; n > 0 {
				fmt.Fprintf(w, "  %s %d\n",
					SeverityStyle(string(sev)).Width(10).Render(string(sev)), n)
			}
		}
		printChanged(w, records)
	}

	printFailures(w, records)
	fmt.Fprintln(w)
}

func printChanged(w io.Writer, records []*aggregate.Record) {
	for _, rec := range records {
		d := rec.Diff
		if d == nil || d.Severity == diff.SeverityNone {
			continue
		}
		label := SeverityStyle(string(d.Severity)).Render(fmt.Sprintf("%-8s", d.Severity))
		if d.Severity == diff.SeverityNew {
			fmt.Fprintf(w, "  %s %s %s\n", label, rec.URL, MutedStyle.Render("(no baseline)"))
			continue
		}
		fmt.Fprintf(w, "  %s %s %s\n", label, rec.URL,
			MutedStyle.Render(fmt.Sprintf("%.2f%% visual, %d field(s)", d.Percent, len(d.Changes))))
		for _, c := range d.Changes {
			fmt.Fprintf(w, "           %s: %s -> %s\n",
				MutedStyle.Render(c.Field), c.Before, c.After)
		}
	}
}

func printFailures(w io.Writer, records []*aggregate.Record) {
	header := false
	for _, rec := range records {
		if rec.Outcome != capture.OutcomeFailed {
			continue
		}
		if !header {
			fmt.Fprintln(w, SectionStyle.Render("Failures"))
			header = true
		}
		fmt.Fprintf(w, "  %s %s %s\n",
			ErrorStyle.Render("✗"), rec.URL, MutedStyle.Render(rec.Error))
	}
}
