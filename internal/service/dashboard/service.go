package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	employeeRepo     employee.EmployeeRepository
	attendanceRepo   attendance.AttendanceRepository
	leaveRequestRepo leave.LeaveRequestRepository
	location         *time.Location
	now              func() time.Time
}

func NewDashboardService(
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	leaveRequestRepo leave.LeaveRequestRepository,
	location *time.Location,
) dashboard.DashboardService {
	if location == nil {
		location = time.Local
	}
	return &DashboardServiceImpl{
		employeeRepo:     employeeRepo,
		attendanceRepo:   attendanceRepo,
		leaveRequestRepo: leaveRequestRepo,
		location:         location,
		now:              time.Now,
	}
}

// GetDashboard returns the day's counters using parallel goroutines
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context, req dashboard.DashboardRequest) (dashboard.DashboardResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return dashboard.DashboardResponse{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if !employee.Role(claims.Role).CanManage() {
		return dashboard.DashboardResponse{}, auth.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return dashboard.DashboardResponse{}, err
	}

	now := s.now().In(s.location)
	date := req.Date
	if date == "" {
		date = now.Format(attendance.DateLayout)
	}

	resp := dashboard.DashboardResponse{Date: date}

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Headcount
	g.Go(func() error {
		_, total, err := s.employeeRepo.List(gCtx, employee.EmployeeFilter{Page: 1, Limit: 1})
		if err != nil {
			return fmt.Errorf("failed to count employees: %w", err)
		}
		resp.TotalEmployees = total
		return nil
	})

	// 2. Active accounts
	g.Go(func() error {
		active, err := s.employeeRepo.CountActive(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count active employees: %w", err)
		}
		resp.ActiveEmployees = active
		return nil
	})

	// 3. Admins
	g.Go(func() error {
		admins, err := s.employeeRepo.CountByRole(gCtx, employee.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		resp.Admins = admins
		return nil
	})

	// 4. Check-ins of the day
	g.Go(func() error {
		checkedIn, err := s.attendanceRepo.CountByDate(gCtx, date)
		if err != nil {
			return err
		}
		resp.CheckedIn = checkedIn
		return nil
	})

	// 5. Late check-ins of the day
	g.Go(func() error {
		late, err := s.attendanceRepo.CountByDateAndStatus(gCtx, date, attendance.StatusLate)
		if err != nil {
			return err
		}
		resp.Late = late
		return nil
	})

	// 6. Leave requests awaiting a decision
	g.Go(func() error {
		pending, err := s.leaveRequestRepo.CountByStatus(gCtx, leave.LeaveRequestStatusPending)
		if err != nil {
			return fmt.Errorf("failed to count pending leave requests: %w", err)
		}
		resp.PendingLeaves = pending
		return nil
	})

	if err := g.Wait(); err != nil {
		return dashboard.DashboardResponse{}, err
	}

	resp.NotCheckedIn = max(resp.ActiveEmployees-resp.CheckedIn, 0)
	resp.GeneratedAt = now.Format(time.RFC3339)
	return resp, nil
}
