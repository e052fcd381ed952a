package report

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const MaxExportDays = 366

// ========================================
// ATTENDANCE EXPORT
// ========================================

type AttendanceExportRequest struct {
	StartDate  string  `json:"start_date"` // YYYY-MM-DD, defaults to the first day of the current month
	EndDate    string  `json:"end_date"`   // YYYY-MM-DD, defaults to today
	EmployeeID *string `json:"employee_id,omitempty"`
}

func (r *AttendanceExportRequest) Validate(now time.Time) error {
	var errs validator.ValidationErrors

	if r.StartDate == "" {
		r.StartDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
	}
	if r.EndDate == "" {
		r.EndDate = now.Format("2006-01-02")
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if startOK && endOK {
		if end.Before(start) {
			errs.Add("end_date", "end_date must not be before start_date")
		} else if end.Sub(start).Hours()/24 >= MaxExportDays {
			errs.Add("end_date", "export range must not exceed 366 days")
		}
	}
	if r.EmployeeID != nil && !validator.IsValidObjectID(*r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid identifier")
	}

	return errs.Err()
}

// Filename is the download name of the workbook
func (r AttendanceExportRequest) Filename() string {
	return "attendance_" + r.StartDate + "_" + r.EndDate + ".xlsx"
}

// EmployeeSummary is one row of the summary sheet
type EmployeeSummary struct {
	EmpID        string
	EmployeeName string
	Present      int
	Late         int
	WorkingHours float64
}
