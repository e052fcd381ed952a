package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
)

type LeaveRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]leave.LeaveRequest
}

func NewLeaveRequestRepository() *LeaveRequestRepository {
	return &LeaveRequestRepository{requests: make(map[string]leave.LeaveRequest)}
}

// Create implements leave.LeaveRequestRepository.
func (r *LeaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req.ID = newID()
	r.requests[req.ID] = req
	return req, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *LeaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

// List implements leave.LeaveRequestRepository.
func (r *LeaveRequestRepository) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []leave.LeaveRequest
	for _, req := range r.requests {
		if filter.EmployeeID != nil && req.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(req.Status) != *filter.Status {
			continue
		}
		if filter.Type != nil && string(req.Type) != *filter.Type {
			continue
		}
		matched = append(matched, req)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	start, end := page(len(matched), filter.Page, filter.Limit)
	return matched[start:end], int64(len(matched)), nil
}

// HasOverlap implements leave.LeaveRequestRepository.
func (r *LeaveRequestRepository) HasOverlap(ctx context.Context, employeeID string, startDate string, endDate string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, req := range r.requests {
		if req.EmployeeID != employeeID || req.Status == leave.LeaveRequestStatusRejected {
			continue
		}
		if req.StartDate <= endDate && req.EndDate >= startDate {
			return true, nil
		}
	}
	return false, nil
}

// UpdateDecision implements leave.LeaveRequestRepository.
func (r *LeaveRequestRepository) UpdateDecision(ctx context.Context, req leave.LeaveRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.requests[req.ID]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	if stored.Status != leave.LeaveRequestStatusPending {
		return leave.ErrLeaveRequestAlreadyProcessed
	}
	stored.Status = req.Status
	stored.DecidedBy = req.DecidedBy
	stored.DecidedAt = req.DecidedAt
	stored.DecisionNote = req.DecisionNote
	stored.UpdatedAt = req.UpdatedAt
	r.requests[req.ID] = stored
	return nil
}

// CountByStatus implements leave.LeaveRequestRepository.
func (r *LeaveRequestRepository) CountByStatus(ctx context.Context, status leave.LeaveRequestStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, req := range r.requests {
		if req.Status == status {
			n++
		}
	}
	return n, nil
}
