package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/spreadsheet"
)

const exportPageSize = 100

var (
	attendanceHeader = []string{"Emp ID", "Name", "Date", "Check In", "Check Out", "Working Hours", "Status", "Note"}
	summaryHeader    = []string{"Emp ID", "Name", "Present", "Late", "Total Days", "Working Hours"}
)

type ReportServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	location       *time.Location
	now            func() time.Time
}

func NewReportService(attendanceRepo attendance.AttendanceRepository, location *time.Location) report.ReportService {
	if location == nil {
		location = time.Local
	}
	return &ReportServiceImpl{
		attendanceRepo: attendanceRepo,
		location:       location,
		now:            time.Now,
	}
}

// ExportAttendance implements report.ReportService.
func (s *ReportServiceImpl) ExportAttendance(ctx context.Context, req report.AttendanceExportRequest, w io.Writer) (string, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if !employee.Role(claims.Role).CanManage() {
		return "", auth.ErrForbidden
	}
	if err := req.Validate(s.now().In(s.location)); err != nil {
		return "", err
	}

	records, err := s.collect(ctx, req)
	if err != nil {
		return "", err
	}

	rows := make([][]interface{}, 0, len(records))
	summaries := make(map[string]*report.EmployeeSummary)
	for _, a := range records {
		checkOut := ""
		var hours interface{}
		if a.CheckOut != nil {
			checkOut = a.CheckOut.In(s.location).Format("15:04")
		}
		if h := a.WorkingHours(); h != nil {
			hours = *h
		}
		rows = append(rows, []interface{}{
			a.EmpID, a.EmployeeName, a.Date, a.CheckIn.In(s.location).Format("15:04"), checkOut, hours, string(a.Status), a.Note,
		})

		sum, ok := summaries[a.EmployeeID]
		if !ok {
			sum = &report.EmployeeSummary{EmpID: a.EmpID, EmployeeName: a.EmployeeName}
			summaries[a.EmployeeID] = sum
		}
		if a.Status == attendance.StatusLate {
			sum.Late++
		} else {
			sum.Present++
		}
		if h := a.WorkingHours(); h != nil {
			sum.WorkingHours += *h
		}
	}

	ordered := make([]*report.EmployeeSummary, 0, len(summaries))
	for _, sum := range summaries {
		ordered = append(ordered, sum)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].EmpID < ordered[j].EmpID })

	summaryRows := make([][]interface{}, 0, len(ordered))
	for _, sum := range ordered {
		summaryRows = append(summaryRows, []interface{}{
			sum.EmpID, sum.EmployeeName, sum.Present, sum.Late, sum.Present + sum.Late, roundHours(sum.WorkingHours),
		})
	}

	err = spreadsheet.Write(w,
		spreadsheet.Sheet{Name: "Attendance", Header: attendanceHeader, Rows: rows},
		spreadsheet.Sheet{Name: "Summary", Header: summaryHeader, Rows: summaryRows},
	)
	if err != nil {
		return "", fmt.Errorf("failed to write attendance workbook: %w", err)
	}
	return req.Filename(), nil
}

// collect pages through the range oldest first.
func (s *ReportServiceImpl) collect(ctx context.Context, req report.AttendanceExportRequest) ([]attendance.Attendance, error) {
	filter := attendance.AttendanceFilter{
		EmployeeID: req.EmployeeID,
		StartDate:  &req.StartDate,
		EndDate:    &req.EndDate,
		Limit:      exportPageSize,
	}

	var all []attendance.Attendance
	for page := 1; ; page++ {
		filter.Page = page
		records, total, err := s.attendanceRepo.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to load attendances for export: %w", err)
		}
		all = append(all, records...)
		if len(records) < exportPageSize || int64(len(all)) >= total {
			break
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Date != all[j].Date {
			return all[i].Date < all[j].Date
		}
		return all[i].EmpID < all[j].EmpID
	})
	return all, nil
}

func roundHours(h float64) float64 {
	return float64(int64(h*100+0.5)) / 100
}
