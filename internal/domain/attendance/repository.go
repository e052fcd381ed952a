package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	// Create inserts a record; a second record for the same employee and date returns ErrAlreadyCheckedIn
	Create(ctx context.Context, a Attendance) (Attendance, error)
	GetByID(ctx context.Context, id string) (Attendance, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (Attendance, error)
	// SetCheckOut records the check-out only if none is set yet, otherwise ErrAlreadyCheckedOut
	SetCheckOut(ctx context.Context, id string, at time.Time) (Attendance, error)
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
	CountByDate(ctx context.Context, date string) (int64, error)
	CountByDateAndStatus(ctx context.Context, date string, status Status) (int64, error)
}
