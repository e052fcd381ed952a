package attendance

import (
	"context"
	"io"
)

type AttendanceService interface {
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context) (AttendanceResponse, error)
	Today(ctx context.Context) (TodayResponse, error)
	ListMine(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	List(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	Get(ctx context.Context, id string) (AttendanceResponse, error)
	// OpenPhoto returns the stored photo of a record the caller may see
	OpenPhoto(ctx context.Context, id string) (io.ReadCloser, string, error)
}
