package leave

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
)

type LeaveServiceImpl struct {
	leaveRequestRepo leave.LeaveRequestRepository
	employeeRepo     employee.EmployeeRepository
	notifier         notification.Notifier
	now              func() time.Time
}

func NewLeaveService(
	leaveRequestRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	notifier notification.Notifier,
) leave.LeaveRequestService {
	return &LeaveServiceImpl{
		leaveRequestRepo: leaveRequestRepo,
		employeeRepo:     employeeRepo,
		notifier:         notifier,
		now:              time.Now,
	}
}

func getClaimsFromContext(ctx context.Context) (jwt.Claims, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return jwt.Claims{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	return claims, nil
}

// Apply implements leave.LeaveRequestService.
func (s *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveRequestResponse, error) {
	claims, err := getClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, claims.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return leave.LeaveRequestResponse{}, employee.ErrEmployeeNotFound
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive {
		return leave.LeaveRequestResponse{}, employee.ErrEmployeeInactive
	}

	overlap, err := s.leaveRequestRepo.HasOverlap(ctx, emp.ID, req.StartDate, req.EndDate)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	if overlap {
		return leave.LeaveRequestResponse{}, leave.ErrOverlappingLeave
	}

	now := s.now()
	created, err := s.leaveRequestRepo.Create(ctx, leave.LeaveRequest{
		EmployeeID:   emp.ID,
		EmpID:        emp.EmpID,
		EmployeeName: emp.Name,
		Type:         leave.LeaveType(req.Type),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Days:         req.Days(),
		Reason:       req.Reason,
		Status:       leave.LeaveRequestStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	s.notifier.NotifyManagers(ctx, notification.CreateNotificationRequest{
		Type:  notification.TypeLeaveRequested,
		Title: "Leave requested",
		Message: fmt.Sprintf("%s (%s) requested %s leave from %s to %s (%d days): %s",
			created.EmployeeName, created.EmpID, created.Type, created.StartDate, created.EndDate, created.Days, created.Reason),
		Data: map[string]interface{}{
			"leave_request_id": created.ID,
			"employee_id":      created.EmployeeID,
		},
	})

	return leave.NewLeaveRequestResponse(created), nil
}

// Decide implements leave.LeaveRequestService.
func (s *LeaveServiceImpl) Decide(ctx context.Context, req leave.DecideLeaveRequest) (leave.LeaveRequestResponse, error) {
	claims, err := getClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	role := employee.Role(claims.Role)
	if !role.CanManage() {
		return leave.LeaveRequestResponse{}, auth.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := s.leaveRequestRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	// Only the boss may decide on their own request.
	if request.EmployeeID == claims.EmployeeID && role != employee.RoleBoss {
		return leave.LeaveRequestResponse{}, auth.ErrForbidden
	}

	if err := request.Transition(leave.LeaveRequestStatus(req.Status), claims.EmployeeID, req.Note, s.now()); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if err := s.leaveRequestRepo.UpdateDecision(ctx, request); err != nil {
		if errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed) || errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveRequestResponse{}, err
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to update leave request: %w", err)
	}

	message := fmt.Sprintf("Your %s leave from %s to %s was %s", request.Type, request.StartDate, request.EndDate, request.Status)
	if request.DecisionNote != nil {
		message += ": " + *request.DecisionNote
	}
	s.notifier.NotifyEmployee(ctx, request.EmployeeID, notification.CreateNotificationRequest{
		Type:    notification.TypeLeaveDecided,
		Title:   "Leave " + strings.ToLower(string(request.Status)),
		Message: message,
		Data: map[string]interface{}{
			"leave_request_id": request.ID,
			"status":           string(request.Status),
		},
	})

	return leave.NewLeaveRequestResponse(request), nil
}

// ListMine implements leave.LeaveRequestService.
func (s *LeaveServiceImpl) ListMine(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveRequestResponse, error) {
	claims, err := getClaimsFromContext(ctx)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	filter.EmployeeID = &claims.EmployeeID
	return s.list(ctx, filter)
}

// List implements leave.LeaveRequestService.
func (s *LeaveServiceImpl) List(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveRequestResponse, error) {
	claims, err := getClaimsFromContext(ctx)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	if !employee.Role(claims.Role).CanManage() {
		return leave.ListLeaveRequestResponse{}, auth.ErrForbidden
	}
	return s.list(ctx, filter)
}

func (s *LeaveServiceImpl) list(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, total, err := s.leaveRequestRepo.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.NewLeaveRequestResponse(r))
	}

	return leave.ListLeaveRequestResponse{
		TotalCount:    total,
		Page:          filter.Page,
		Limit:         filter.Limit,
		TotalPages:    int(math.Ceil(float64(total) / float64(filter.Limit))),
		LeaveRequests: responses,
	}, nil
}

// Get implements leave.LeaveRequestService.
func (s *LeaveServiceImpl) Get(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	claims, err := getClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := s.leaveRequestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	if request.EmployeeID != claims.EmployeeID && !employee.Role(claims.Role).CanManage() {
		return leave.LeaveRequestResponse{}, auth.ErrForbidden
	}
	return leave.NewLeaveRequestResponse(request), nil
}
