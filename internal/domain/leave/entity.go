package leave

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending  LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected LeaveRequestStatus = "rejected"
)

func (s LeaveRequestStatus) IsValid() bool {
	switch s {
	case LeaveRequestStatusPending, LeaveRequestStatusApproved, LeaveRequestStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s LeaveRequestStatus) IsTerminal() bool {
	return s == LeaveRequestStatusApproved || s == LeaveRequestStatusRejected
}

type LeaveType string

const (
	LeaveTypeCasual LeaveType = "casual"
	LeaveTypeSick   LeaveType = "sick"
	LeaveTypeEarned LeaveType = "earned"
	LeaveTypeUnpaid LeaveType = "unpaid"
)

var LeaveTypes = []string{
	string(LeaveTypeCasual),
	string(LeaveTypeSick),
	string(LeaveTypeEarned),
	string(LeaveTypeUnpaid),
}

type LeaveRequest struct {
	ID           string
	EmployeeID   string
	EmpID        string
	EmployeeName string
	Type         LeaveType
	StartDate    string // YYYY-MM-DD
	EndDate      string // YYYY-MM-DD
	Days         int
	Reason       string
	Status       LeaveRequestStatus
	DecidedBy    *string
	DecidedAt    *time.Time
	DecisionNote *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Transition moves a pending request to a terminal status. Terminal requests
// never change again.
func (r *LeaveRequest) Transition(to LeaveRequestStatus, actorID string, note string, at time.Time) error {
	if !to.IsTerminal() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if r.Status != LeaveRequestStatusPending {
		return ErrLeaveRequestAlreadyProcessed
	}

	r.Status = to
	r.DecidedBy = &actorID
	r.DecidedAt = &at
	if note != "" {
		r.DecisionNote = &note
	}
	r.UpdatedAt = at
	return nil
}

// CountDays returns the number of calendar days in [start, end].
func CountDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
