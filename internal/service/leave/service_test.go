package leave

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	managers []notification.CreateNotificationRequest
	direct   map[string][]notification.CreateNotificationRequest
}

func (n *recordingNotifier) NotifyEmployee(ctx context.Context, employeeID string, req notification.CreateNotificationRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.direct == nil {
		n.direct = make(map[string][]notification.CreateNotificationRequest)
	}
	n.direct[employeeID] = append(n.direct[employeeID], req)
}

func (n *recordingNotifier) NotifyManagers(ctx context.Context, req notification.CreateNotificationRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.managers = append(n.managers, req)
}

type fixture struct {
	svc       leave.LeaveRequestService
	employees *memory.EmployeeRepository
	notifier  *recordingNotifier
}

func newFixture() *fixture {
	f := &fixture{
		employees: memory.NewEmployeeRepository(),
		notifier:  &recordingNotifier{},
	}
	svc := NewLeaveService(memory.NewLeaveRequestRepository(), f.employees, f.notifier).(*LeaveServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC) }
	f.svc = svc
	return f
}

func (f *fixture) login(t *testing.T, empID string, role employee.Role) (context.Context, string) {
	t.Helper()
	e, err := f.employees.Create(context.Background(), employee.Employee{
		EmpID:    empID,
		Name:     "Name " + empID,
		Email:    empID + "@example.com",
		Role:     role,
		IsActive: true,
	})
	require.NoError(t, err)
	ctx := jwt.ContextWithClaims(context.Background(), jwt.Claims{EmployeeID: e.ID, EmpID: e.EmpID, Role: string(role)})
	return ctx, e.ID
}

func casual(start, end string) leave.ApplyLeaveRequest {
	return leave.ApplyLeaveRequest{Type: "casual", StartDate: start, EndDate: end, Reason: "family event"}
}

func TestApply(t *testing.T) {
	f := newFixture()
	alice, aliceID := f.login(t, "EMP-001", employee.RoleEmployee)

	resp, err := f.svc.Apply(alice, casual("2024-05-01", "2024-05-03"))
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, 3, resp.Days)
	assert.Equal(t, aliceID, resp.EmployeeID)
	assert.Equal(t, "EMP-001", resp.EmpID)

	require.Len(t, f.notifier.managers, 1)
	assert.Equal(t, notification.TypeLeaveRequested, f.notifier.managers[0].Type)
	assert.Equal(t, resp.ID, f.notifier.managers[0].Data["leave_request_id"])
}

func TestApply_Validation(t *testing.T) {
	f := newFixture()
	alice, _ := f.login(t, "EMP-001", employee.RoleEmployee)

	_, err := f.svc.Apply(alice, casual("2024-05-03", "2024-05-01"))
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "end_date")
}

func TestApply_Overlap(t *testing.T) {
	f := newFixture()
	alice, _ := f.login(t, "EMP-001", employee.RoleEmployee)
	admin, _ := f.login(t, "ADM-001", employee.RoleAdmin)

	first, err := f.svc.Apply(alice, casual("2024-05-01", "2024-05-03"))
	require.NoError(t, err)

	_, err = f.svc.Apply(alice, casual("2024-05-03", "2024-05-05"))
	assert.ErrorIs(t, err, leave.ErrOverlappingLeave)

	// Rejected requests free their dates again.
	_, err = f.svc.Decide(admin, leave.DecideLeaveRequest{ID: first.ID, Status: "rejected"})
	require.NoError(t, err)
	_, err = f.svc.Apply(alice, casual("2024-05-03", "2024-05-05"))
	assert.NoError(t, err)
}

func TestDecide(t *testing.T) {
	f := newFixture()
	alice, aliceID := f.login(t, "EMP-001", employee.RoleEmployee)
	admin, adminID := f.login(t, "ADM-001", employee.RoleAdmin)

	applied, err := f.svc.Apply(alice, casual("2024-05-01", "2024-05-01"))
	require.NoError(t, err)

	_, err = f.svc.Decide(alice, leave.DecideLeaveRequest{ID: applied.ID, Status: "approved"})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	decided, err := f.svc.Decide(admin, leave.DecideLeaveRequest{ID: applied.ID, Status: "approved", Note: "enjoy"})
	require.NoError(t, err)
	assert.Equal(t, "approved", decided.Status)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, adminID, *decided.DecidedBy)
	require.NotNil(t, decided.DecisionNote)
	assert.Equal(t, "enjoy", *decided.DecisionNote)

	require.Len(t, f.notifier.direct[aliceID], 1)
	assert.Equal(t, notification.TypeLeaveDecided, f.notifier.direct[aliceID][0].Type)
	assert.Contains(t, f.notifier.direct[aliceID][0].Message, "approved: enjoy")

	_, err = f.svc.Decide(admin, leave.DecideLeaveRequest{ID: applied.ID, Status: "rejected"})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)

	got, err := f.svc.Get(alice, applied.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", got.Status)
}

func TestDecide_InvalidStatus(t *testing.T) {
	f := newFixture()
	alice, _ := f.login(t, "EMP-001", employee.RoleEmployee)
	admin, _ := f.login(t, "ADM-001", employee.RoleAdmin)

	applied, err := f.svc.Apply(alice, casual("2024-05-01", "2024-05-01"))
	require.NoError(t, err)

	_, err = f.svc.Decide(admin, leave.DecideLeaveRequest{ID: applied.ID, Status: "pending"})
	assert.Error(t, err)

	_, err = f.svc.Decide(admin, leave.DecideLeaveRequest{ID: "65a1f0c2e4b0a1b2c3d4e5f6", Status: "approved"})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestDecide_OwnRequest(t *testing.T) {
	f := newFixture()
	admin, _ := f.login(t, "ADM-001", employee.RoleAdmin)
	boss, _ := f.login(t, "BOSS", employee.RoleBoss)

	adminLeave, err := f.svc.Apply(admin, casual("2024-05-01", "2024-05-01"))
	require.NoError(t, err)
	_, err = f.svc.Decide(admin, leave.DecideLeaveRequest{ID: adminLeave.ID, Status: "approved"})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	bossLeave, err := f.svc.Apply(boss, casual("2024-05-01", "2024-05-01"))
	require.NoError(t, err)
	_, err = f.svc.Decide(boss, leave.DecideLeaveRequest{ID: bossLeave.ID, Status: "approved"})
	assert.NoError(t, err)
}

func TestDecide_ConcurrentDecidersOneWins(t *testing.T) {
	f := newFixture()
	alice, _ := f.login(t, "EMP-001", employee.RoleEmployee)
	admin, _ := f.login(t, "ADM-001", employee.RoleAdmin)
	boss, _ := f.login(t, "BOSS", employee.RoleBoss)

	applied, err := f.svc.Apply(alice, casual("2024-05-01", "2024-05-01"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, tc := range []struct {
		ctx    context.Context
		status string
	}{{admin, "approved"}, {boss, "rejected"}} {
		wg.Add(1)
		go func(i int, ctx context.Context, status string) {
			defer wg.Done()
			_, results[i] = f.svc.Decide(ctx, leave.DecideLeaveRequest{ID: applied.ID, Status: status})
		}(i, tc.ctx, tc.status)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestListAndGet_Visibility(t *testing.T) {
	f := newFixture()
	alice, _ := f.login(t, "EMP-001", employee.RoleEmployee)
	bob, _ := f.login(t, "EMP-002", employee.RoleEmployee)
	admin, _ := f.login(t, "ADM-001", employee.RoleAdmin)

	aliceLeave, err := f.svc.Apply(alice, casual("2024-05-01", "2024-05-01"))
	require.NoError(t, err)
	_, err = f.svc.Apply(bob, leave.ApplyLeaveRequest{Type: "sick", StartDate: "2024-05-02", EndDate: "2024-05-02", Reason: "flu"})
	require.NoError(t, err)

	mine, err := f.svc.ListMine(alice, leave.LeaveFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalCount)

	_, err = f.svc.List(alice, leave.LeaveFilter{})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	sick := "sick"
	filtered, err := f.svc.List(admin, leave.LeaveFilter{Type: &sick})
	require.NoError(t, err)
	require.Len(t, filtered.LeaveRequests, 1)
	assert.Equal(t, "EMP-002", filtered.LeaveRequests[0].EmpID)

	_, err = f.svc.Get(bob, aliceLeave.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)
	_, err = f.svc.Get(admin, aliceLeave.ID)
	assert.NoError(t, err)
}
