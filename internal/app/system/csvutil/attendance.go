// internal/app/system/csvutil/attendance.go
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/attendease/attendease/internal/domain/models"
)

// AttendanceExportRow pairs an attendance record with the display fields
// joined in by the caller.
type AttendanceExportRow struct {
	Record    models.Attendance
	UserName  string
	UserEmail string
}

// WriteAttendanceCSV streams attendance records as CSV. Timestamps are
// RFC 3339 in UTC so exports diff cleanly.
func WriteAttendanceCSV(w io.Writer, rows []AttendanceExportRow) error {
	cw := csv.NewWriter(w)

	header := []string{"scanned_at", "name", "email", "status", "session_id", "latitude", "longitude"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range rows {
		rec := row.Record

		sessionID := ""
		if rec.SessionID != nil {
			sessionID = rec.SessionID.Hex()
		}
		lat, lng := "", ""
		if rec.Location != nil {
			lat = fmt.Sprintf("%.6f", rec.Location.Lat)
			lng = fmt.Sprintf("%.6f", rec.Location.Lon)
		}

		out := []string{
			rec.ScannedAt.UTC().Format(time.RFC3339),
			row.UserName,
			row.UserEmail,
			rec.Status,
			sessionID,
			lat,
			lng,
		}
		if err := cw.Write(out); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
