package attendance

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const MaxPhotoSize = 10 << 20 // 10MB

var allowedPhotoExts = []string{".jpg", ".jpeg", ".png", ".webp"}

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	Note          string    `json:"note,omitempty"`
	Photo         io.Reader `json:"-"`
	PhotoFilename string    `json:"-"`
	PhotoSize     int64     `json:"-"`
}

func (r *CheckInRequest) HasPhoto() bool {
	return r.Photo != nil
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Note = strings.TrimSpace(r.Note)
	if len(r.Note) > 500 {
		errs.Add("note", "note must not exceed 500 characters")
	}

	if r.HasPhoto() {
		ext := strings.ToLower(filepath.Ext(r.PhotoFilename))
		if !validator.IsInSlice(ext, allowedPhotoExts) {
			errs.Add("photo", "invalid file type: only jpg, jpeg, png, webp allowed")
		} else if r.PhotoSize > MaxPhotoSize {
			errs.Add("photo", "photo size must not exceed 10MB")
		}
	}

	return errs.Err()
}

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}

	if f.EmployeeID != nil && !validator.IsValidObjectID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid identifier")
	}

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs.Add("status", "status must be one of: present, late")
	}

	if f.Date != nil {
		if _, valid := validator.IsValidDate(*f.Date); !valid {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}

	var start, end time.Time
	var startOK, endOK bool
	if f.StartDate != nil {
		if start, startOK = validator.IsValidDate(*f.StartDate); !startOK {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil {
		if end, endOK = validator.IsValidDate(*f.EndDate); !endOK {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return errs.Err()
}

type AttendanceResponse struct {
	ID           string   `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	EmpID        string   `json:"emp_id"`
	EmployeeName string   `json:"employee_name"`
	Date         string   `json:"date"`
	CheckIn      string   `json:"check_in"`
	CheckOut     *string  `json:"check_out,omitempty"`
	WorkingHours *float64 `json:"working_hours,omitempty"`
	Status       string   `json:"status"`
	Note         string   `json:"note,omitempty"`
	HasPhoto     bool     `json:"has_photo"`
	PhotoURL     *string  `json:"photo_url,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmpID:        a.EmpID,
		EmployeeName: a.EmployeeName,
		Date:         a.Date,
		CheckIn:      a.CheckIn.Format(time.RFC3339),
		WorkingHours: a.WorkingHours(),
		Status:       string(a.Status),
		Note:         a.Note,
		HasPhoto:     a.PhotoPath != nil,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    a.UpdatedAt.Format(time.RFC3339),
	}
	if a.CheckOut != nil {
		checkOut := a.CheckOut.Format(time.RFC3339)
		resp.CheckOut = &checkOut
	}
	return resp
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type TodayResponse struct {
	Date       string              `json:"date"`
	CheckedIn  bool                `json:"checked_in"`
	CheckedOut bool                `json:"checked_out"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}
