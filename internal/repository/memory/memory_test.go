package memory

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository()

	created, err := repo.Create(ctx, employee.Employee{EmpID: "EMP001", Email: "Jane@Example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "jane@example.com", created.Email)

	_, err = repo.Create(ctx, employee.Employee{EmpID: "EMP001", Email: "other@example.com"})
	assert.ErrorIs(t, err, employee.ErrEmpIDExists)

	_, err = repo.Create(ctx, employee.Employee{EmpID: "EMP002", Email: "JANE@example.com"})
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestAttendanceRepository_OnePerDay(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	a, err := repo.Create(ctx, attendance.Attendance{EmployeeID: "e1", Date: "2026-03-02", CheckIn: now})
	require.NoError(t, err)

	_, err = repo.Create(ctx, attendance.Attendance{EmployeeID: "e1", Date: "2026-03-02", CheckIn: now})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	_, err = repo.Create(ctx, attendance.Attendance{EmployeeID: "e2", Date: "2026-03-02", CheckIn: now})
	assert.NoError(t, err)

	out, err := repo.SetCheckOut(ctx, a.ID, now.Add(8*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, out.CheckOut)

	_, err = repo.SetCheckOut(ctx, a.ID, now.Add(9*time.Hour))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	_, err = repo.SetCheckOut(ctx, "missing", now)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestLeaveRequestRepository_OverlapAndDecision(t *testing.T) {
	ctx := context.Background()
	repo := NewLeaveRequestRepository()

	rejected, err := repo.Create(ctx, leave.LeaveRequest{
		EmployeeID: "e1", StartDate: "2026-03-01", EndDate: "2026-03-05",
		Status: leave.LeaveRequestStatusRejected,
	})
	require.NoError(t, err)

	overlap, err := repo.HasOverlap(ctx, "e1", "2026-03-03", "2026-03-04")
	require.NoError(t, err)
	assert.False(t, overlap, "rejected requests do not block")

	pending, err := repo.Create(ctx, leave.LeaveRequest{
		EmployeeID: "e1", StartDate: "2026-03-10", EndDate: "2026-03-12",
		Status: leave.LeaveRequestStatusPending,
	})
	require.NoError(t, err)

	overlap, err = repo.HasOverlap(ctx, "e1", "2026-03-12", "2026-03-15")
	require.NoError(t, err)
	assert.True(t, overlap)

	overlap, err = repo.HasOverlap(ctx, "e2", "2026-03-12", "2026-03-15")
	require.NoError(t, err)
	assert.False(t, overlap)

	pending.Status = leave.LeaveRequestStatusApproved
	require.NoError(t, repo.UpdateDecision(ctx, pending))

	err = repo.UpdateDecision(ctx, pending)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)

	rejected.Status = leave.LeaveRequestStatusApproved
	assert.ErrorIs(t, repo.UpdateDecision(ctx, rejected), leave.ErrLeaveRequestAlreadyProcessed)

	count, err := repo.CountByStatus(ctx, leave.LeaveRequestStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
