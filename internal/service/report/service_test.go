package report

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adminCtx = jwt.ContextWithClaims(context.Background(), jwt.Claims{EmployeeID: "a1", EmpID: "ADM-001", Role: "admin"})

func record(employeeID, empID, date string, status attendance.Status, in, out string) attendance.Attendance {
	checkIn, _ := time.Parse(time.RFC3339, date+"T"+in+":00Z")
	a := attendance.Attendance{
		EmployeeID:   employeeID,
		EmpID:        empID,
		EmployeeName: "Name " + empID,
		Date:         date,
		CheckIn:      checkIn,
		Status:       status,
	}
	if out != "" {
		checkOut, _ := time.Parse(time.RFC3339, date+"T"+out+":00Z")
		a.CheckOut = &checkOut
	}
	return a
}

func newTestReportService(t *testing.T, records ...attendance.Attendance) *ReportServiceImpl {
	t.Helper()
	repo := memory.NewAttendanceRepository()
	for _, a := range records {
		_, err := repo.Create(context.Background(), a)
		require.NoError(t, err)
	}
	svc := NewReportService(repo, time.UTC).(*ReportServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportAttendance(t *testing.T) {
	svc := newTestReportService(t,
		record("e2", "EMP-002", "2024-05-02", attendance.StatusLate, "09:45", ""),
		record("e1", "EMP-001", "2024-05-01", attendance.StatusPresent, "09:00", "17:30"),
		record("e1", "EMP-001", "2024-05-02", attendance.StatusLate, "10:00", "18:00"),
		record("e1", "EMP-001", "2024-04-30", attendance.StatusPresent, "09:00", "17:00"),
	)

	var buf bytes.Buffer
	filename, err := svc.ExportAttendance(adminCtx, report.AttendanceExportRequest{StartDate: "2024-05-01", EndDate: "2024-05-31"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "attendance_2024-05-01_2024-05-31.xlsx", filename)

	rows, err := spreadsheet.ReadRows(buf.Bytes(), "Attendance")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, attendanceHeader, rows[0])
	assert.Equal(t, []string{"EMP-001", "Name EMP-001", "2024-05-01", "09:00", "17:30", "8.5", "present"}, rows[1])
	assert.Equal(t, "EMP-001", rows[2][0])
	assert.Equal(t, "EMP-002", rows[3][0])
	assert.Equal(t, "", rows[3][4])

	summary, err := spreadsheet.ReadRows(buf.Bytes(), "Summary")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"EMP-001", "Name EMP-001", "1", "1", "2", "16.5"}, summary[1])
	assert.Equal(t, []string{"EMP-002", "Name EMP-002", "0", "1", "1", "0"}, summary[2])
}

func TestExportAttendance_PagesThroughLargeRanges(t *testing.T) {
	var records []attendance.Attendance
	for i := 0; i < 150; i++ {
		records = append(records, record(fmt.Sprintf("e%03d", i), fmt.Sprintf("EMP-%03d", i), "2024-05-10", attendance.StatusPresent, "09:00", ""))
	}
	svc := newTestReportService(t, records...)

	var buf bytes.Buffer
	filename, err := svc.ExportAttendance(adminCtx, report.AttendanceExportRequest{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "attendance_2024-05-01_2024-05-20.xlsx", filename)

	rows, err := spreadsheet.ReadRows(buf.Bytes(), "Attendance")
	require.NoError(t, err)
	assert.Len(t, rows, 151)
}

func TestExportAttendance_Rejections(t *testing.T) {
	svc := newTestReportService(t)
	employeeCtx := jwt.ContextWithClaims(context.Background(), jwt.Claims{EmployeeID: "e1", Role: "employee"})

	_, err := svc.ExportAttendance(employeeCtx, report.AttendanceExportRequest{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = svc.ExportAttendance(adminCtx, report.AttendanceExportRequest{StartDate: "2024-06-01", EndDate: "2024-05-01"}, &bytes.Buffer{})
	assert.Error(t, err)
}
