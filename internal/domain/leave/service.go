package leave

import "context"

type LeaveRequestService interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveRequestResponse, error)
	Decide(ctx context.Context, req DecideLeaveRequest) (LeaveRequestResponse, error)
	ListMine(ctx context.Context, filter LeaveFilter) (ListLeaveRequestResponse, error)
	List(ctx context.Context, filter LeaveFilter) (ListLeaveRequestResponse, error)
	Get(ctx context.Context, id string) (LeaveRequestResponse, error)
}
