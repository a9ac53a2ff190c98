package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var csvHeader = []string{
	"index", "url", "final_url", "outcome", "status", "title", "category",
	"security_grade", "technologies", "load_time_ms", "attempts",
	"screenshot", "diff_percent", "severity", "error",
}

// WriteCSV writes one row per target for spreadsheet triage.
func WriteCSV(path string, r *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, rec := range r.Results {
		diffPercent, severity := "", ""
		if rec.Diff != nil {
			diffPercent = strconv.FormatFloat(rec.Diff.Percent, 'f', 2, 64)
			severity = string(rec.Diff.Severity)
		}
		row := []string{
			strconv.Itoa(rec.Index),
			rec.URL,
			rec.FinalURL,
			rec.Outcome,
			strconv.Itoa(rec.Status),
			rec.Title,
			rec.Category,
			rec.SecurityGrade,
			strings.Join(rec.Technologies, "; "),
			strconv.FormatInt(rec.LoadTimeMS, 10),
			strconv.Itoa(rec.Attempts),
			rec.Screenshot,
			diffPercent,
			severity,
			rec.Error,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", rec.Index, err)
		}
	}

	w.Flush()
	return w.Error()
}
