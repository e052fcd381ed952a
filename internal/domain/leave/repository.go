package leave

import "context"

type LeaveRequestRepository interface {
	Create(ctx context.Context, r LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, int64, error)
	// HasOverlap reports whether the employee has a pending or approved request intersecting [startDate, endDate]
	HasOverlap(ctx context.Context, employeeID string, startDate string, endDate string) (bool, error)
	// UpdateDecision persists a decided request only while the stored status is still pending;
	// otherwise it returns ErrLeaveRequestAlreadyProcessed
	UpdateDecision(ctx context.Context, r LeaveRequest) error
	CountByStatus(ctx context.Context, status LeaveRequestStatus) (int64, error)
}
