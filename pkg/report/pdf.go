package report

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/godseye/godseye/pkg/capture"
)

// severityFill maps a diff severity to its badge color.
func severityFill(severity string) (r, g, b int) {
	switch severity {
	case "critical":
		return 220, 53, 69
	case "high":
		return 253, 126, 20
	case "medium":
		return 255, 193, 7
	case "low":
		return 40, 167, 69
	case "new":
		return 13, 110, 253
	default:
		return 108, 117, 125
	}
}

// WritePDF renders a printable run summary: one header block plus one
// row per target. Screenshots stay on disk; the PDF is the triage sheet,
// not the archive.
func WritePDF(path string, r *Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(125, 86, 244)
	pdf.Cell(0, 10, "Gods Eye Scan Report")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 110)
	pdf.Cell(0, 5, fmt.Sprintf("run %s  -  %s  -  v%s",
		r.RunID, r.Generated.Format("2006-01-02 15:04:05 MST"), r.Version))
	pdf.Ln(5)
	if r.Baseline != "" {
		pdf.Cell(0, 5, "baseline: "+r.Baseline)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(30, 30, 40)
	pdf.Cell(0, 7, fmt.Sprintf("%d targets, %d captured, %d failed",
		r.Summary.Total, r.Summary.Succeeded, r.Summary.Failed))
	pdf.Ln(9)

	// Column header
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(235, 235, 240)
	pdf.CellFormat(10, 6, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(80, 6, "URL", "1", 0, "L", true, 0, "")
	pdf.CellFormat(14, 6, "Status", "1", 0, "C", true, 0, "")
	pdf.CellFormat(14, 6, "Grade", "1", 0, "C", true, 0, "")
	pdf.CellFormat(36, 6, "Category", "1", 0, "L", true, 0, "")
	pdf.CellFormat(36, 6, "Change", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, rec := range r.Results {
		status := "-"
		if rec.Status != 0 {
			status = fmt.Sprintf("%d", rec.Status)
		}
		change := ""
		if rec.Diff != nil {
			if rec.Diff.Severity == "new" {
				change = "new target"
			} else {
				change = fmt.Sprintf("%s (%.2f%%)", rec.Diff.Severity, rec.Diff.Percent)
			}
		}
		switch rec.Outcome {
		case capture.OutcomeFailed:
			change = "capture failed"
		case capture.OutcomeSkipped:
			change = "not scanned"
		}

		pdf.SetTextColor(30, 30, 40)
		pdf.CellFormat(10, 6, fmt.Sprintf("%03d", rec.Index), "1", 0, "C", false, 0, "")
		pdf.CellFormat(80, 6, truncate(rec.URL, 58), "1", 0, "L", false, 0, "")
		pdf.CellFormat(14, 6, status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(14, 6, rec.SecurityGrade, "1", 0, "C", false, 0, "")
		pdf.CellFormat(36, 6, truncate(rec.Category, 24), "1", 0, "L", false, 0, "")
		if rec.Diff != nil {
			cr, cg, cb := severityFill(string(rec.Diff.Severity))
			pdf.SetTextColor(cr, cg, cb)
		}
		pdf.CellFormat(36, 6, truncate(change, 24), "1", 1, "L", false, 0, "")
		pdf.SetTextColor(30, 30, 40)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-3]) + "..."
}
