package report

import (
	"context"
	"io"
)

// ReportService defines the interface for report generation
type ReportService interface {
	// ExportAttendance writes an xlsx workbook with the attendance log and a per-employee summary
	// and returns its download name
	ExportAttendance(ctx context.Context, req AttendanceExportRequest, w io.Writer) (string, error)
}
