// package formatter renders cluster listings and clone reports to text, JSON and CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/desertthunder/mgclone/internal/models"
	"github.com/desertthunder/mgclone/internal/shared"
)

// Report formats accepted by [FormatReport].
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ReportRow is the serialized form of one [models.TransferOutcome].
type ReportRow struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Documents int    `json:"documents"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// Report is the serialized form of a finished run.
type Report struct {
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Jobs      []ReportRow `json:"jobs"`
}

// NewReport summarizes outcomes in the order given.
func NewReport(outcomes []models.TransferOutcome) Report {
	report := Report{Total: len(outcomes), Jobs: make([]ReportRow, len(outcomes))}
	for i, o := range outcomes {
		row := ReportRow{Source: o.Source, Target: o.Target, Documents: o.Documents, Status: "ok"}
		if o.OK() {
			report.Succeeded++
		} else {
			row.Status = "failed"
			row.Error = o.Err.Error()
			report.Failed++
		}
		report.Jobs[i] = row
	}
	return report
}

// ListingToText renders a summary as an indented tree with selection marks and renames.
func ListingToText(summary models.ClusterSummary) []byte {
	var buf bytes.Buffer

	for _, db := range summary {
		name := db.Identity.Name
		if db.Identity.Rename != db.Identity.Name {
			name = fmt.Sprintf("%s → %s", db.Identity.Name, db.Identity.Rename)
		}
		buf.WriteString(fmt.Sprintf("%s (%d/%d selected)\n", name, db.SelectedCount(), len(db.Collections)))

		for _, c := range db.Collections {
			mark := "[ ]"
			if c.Selected {
				mark = "[x]"
			}
			entry := c.Name
			if c.Rename != c.Name {
				entry = fmt.Sprintf("%s → %s", c.Name, c.Rename)
			}
			buf.WriteString(fmt.Sprintf("  %s %s\n", mark, entry))
		}
	}

	buf.WriteString(fmt.Sprintf("\nDatabases: %d\nCollections: %d\n", len(summary), summary.TotalCollections()))
	return buf.Bytes()
}

// ListingToJSON renders discovery results in their ordered shape.
func ListingToJSON(listings []models.Listing) ([]byte, error) {
	type listing struct {
		Database    string   `json:"database"`
		Collections []string `json:"collections"`
	}

	out := make([]listing, len(listings))
	for i, l := range listings {
		collections := l.Collections
		if collections == nil {
			collections = []string{}
		}
		out[i] = listing{Database: l.Database, Collections: collections}
	}
	return shared.MarshalJSON(out, true)
}

// ReportToText renders one line per job followed by totals.
func ReportToText(outcomes []models.TransferOutcome) []byte {
	var buf bytes.Buffer
	report := NewReport(outcomes)

	for _, row := range report.Jobs {
		if row.Error == "" {
			buf.WriteString(fmt.Sprintf("✓ %s → %s (%d documents)\n", row.Source, row.Target, row.Documents))
		} else {
			buf.WriteString(fmt.Sprintf("✗ %s → %s: %s\n", row.Source, row.Target, row.Error))
		}
	}

	buf.WriteString(fmt.Sprintf("\nJobs: %d\nSucceeded: %d\nFailed: %d\n", report.Total, report.Succeeded, report.Failed))
	return buf.Bytes()
}

// ReportToJSON renders the report with totals and one object per job.
func ReportToJSON(outcomes []models.TransferOutcome) ([]byte, error) {
	return shared.MarshalJSON(NewReport(outcomes), true)
}

// ReportToCSV renders one row per job with columns: Source, Target, Documents, Status, Error
func ReportToCSV(outcomes []models.TransferOutcome) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Source", "Target", "Documents", "Status", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range NewReport(outcomes).Jobs {
		record := []string{row.Source, row.Target, strconv.Itoa(row.Documents), row.Status, row.Error}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// IsFormat reports whether format names a supported report format. The empty string means text.
func IsFormat(format string) bool {
	switch format {
	case FormatText, FormatJSON, FormatCSV, "":
		return true
	default:
		return false
	}
}

// FormatReport renders outcomes in the named format.
func FormatReport(format string, outcomes []models.TransferOutcome) ([]byte, error) {
	switch format {
	case FormatText, "":
		return ReportToText(outcomes), nil
	case FormatJSON:
		return ReportToJSON(outcomes)
	case FormatCSV:
		return ReportToCSV(outcomes)
	default:
		return nil, fmt.Errorf("%w: unknown report format %q (want text, json or csv)", shared.ErrInvalidArgument, format)
	}
}

// WriteReport renders outcomes and writes them to w.
func WriteReport(w io.Writer, format string, outcomes []models.TransferOutcome) error {
	data, err := FormatReport(format, outcomes)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteReportFile renders outcomes into the file at path.
func WriteReportFile(path, format string, outcomes []models.TransferOutcome) error {
	data, err := FormatReport(format, outcomes)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}
