// Package report renders a filtered attendance snapshot into the four export
// artifacts: CSV, spreadsheet, paginated PDF, and a browser-printable page.
// Every format shares one nine-column schema; changing a header here changes
// export compatibility.
package report

import (
	"errors"
	"time"

	"github.com/edustar/attendance-register/internal/register"
)

// ErrNoRecords means the filtered selection was empty; no artifact is produced.
var ErrNoRecords = errors.New("no records to export")

// Headers is the fixed column schema shared by all four formats.
var Headers = []string{
	"Full Name",
	"Contact Number",
	"Email Address",
	"Role",
	"Purpose of Visit",
	"Check-in Date",
	"Check-in Time",
	"Check-out Time",
	"Status",
}

// Title appears on the PDF and printable artifacts.
const Title = "Attendance Report"

// localZone is the zone timestamps are rendered in. Overridden in tests to pin
// artifact bytes.
var localZone = time.Local

// Rows converts records to display cells in schema order. Missing optional
// fields render as empty strings.
func Rows(records []register.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.FullName,
			deref(r.Contact),
			deref(r.Email),
			string(r.Role),
			deref(r.Purpose),
			r.Date,
			formatLocal(&r.TimeIn),
			formatLocal(r.TimeOut),
			string(r.Status),
		})
	}
	return rows
}

// formatLocal renders a timestamp the way the admin screen shows it, in the
// viewer's zone rather than raw ISO.
func formatLocal(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(localZone).Format("1/2/2006, 3:04:05 PM")
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
