package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const MaxLeaveDays = 60

type ApplyLeaveRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`

	start time.Time
	end   time.Time
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Reason = strings.TrimSpace(r.Reason)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))

	if !validator.IsInSlice(r.Type, LeaveTypes) {
		errs.Add("type", "type must be one of: casual, sick, earned, unpaid")
	}

	var startOK, endOK bool
	if r.start, startOK = validator.IsValidDate(r.StartDate); !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	if r.end, endOK = validator.IsValidDate(r.EndDate); !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if startOK && endOK {
		if r.end.Before(r.start) {
			errs.Add("end_date", "end_date must not be before start_date")
		} else if CountDays(r.start, r.end) > MaxLeaveDays {
			errs.Add("end_date", "leave must not exceed 60 days")
		}
	}

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}
	if len(r.Reason) > 1000 {
		errs.Add("reason", "reason must not exceed 1000 characters")
	}

	return errs.Err()
}

// Days returns the inclusive day count; valid only after Validate succeeds.
func (r *ApplyLeaveRequest) Days() int {
	return CountDays(r.start, r.end)
}

type DecideLeaveRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

func (r *DecideLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidObjectID(r.ID) {
		errs.Add("id", "id must be a valid identifier")
	}
	if !LeaveRequestStatus(r.Status).IsTerminal() {
		errs.Add("status", "status must be one of: approved, rejected")
	}
	r.Note = strings.TrimSpace(r.Note)
	if len(r.Note) > 500 {
		errs.Add("note", "note must not exceed 500 characters")
	}

	return errs.Err()
}

type LeaveFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	Type       *string `json:"type,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *LeaveFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
	if f.EmployeeID != nil && !validator.IsValidObjectID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid identifier")
	}
	if f.Status != nil && !LeaveRequestStatus(*f.Status).IsValid() {
		errs.Add("status", "status must be one of: pending, approved, rejected")
	}
	if f.Type != nil && !validator.IsInSlice(*f.Type, LeaveTypes) {
		errs.Add("type", "type must be one of: casual, sick, earned, unpaid")
	}

	return errs.Err()
}

type LeaveRequestResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmpID        string  `json:"emp_id"`
	EmployeeName string  `json:"employee_name"`
	Type         string  `json:"type"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Days         int     `json:"days"`
	Reason       string  `json:"reason"`
	Status       string  `json:"status"`
	DecidedBy    *string `json:"decided_by,omitempty"`
	DecidedAt    *string `json:"decided_at,omitempty"`
	DecisionNote *string `json:"decision_note,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmpID:        r.EmpID,
		EmployeeName: r.EmployeeName,
		Type:         string(r.Type),
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Days:         r.Days,
		Reason:       r.Reason,
		Status:       string(r.Status),
		DecidedBy:    r.DecidedBy,
		DecisionNote: r.DecisionNote,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}
	if r.DecidedAt != nil {
		decidedAt := r.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &decidedAt
	}
	return resp
}

type ListLeaveRequestResponse struct {
	TotalCount    int64                  `json:"total_count"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalPages    int                    `json:"total_pages"`
	LeaveRequests []LeaveRequestResponse `json:"leave_requests"`
}
