package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

type AttendanceRepository struct {
	mu      sync.RWMutex
	records map[string]attendance.Attendance
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{records: make(map[string]attendance.Attendance)}
}

// Create implements attendance.AttendanceRepository.
func (r *AttendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, other := range r.records {
		if other.EmployeeID == a.EmployeeID && other.Date == a.Date {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
	}
	a.ID = newID()
	r.records[a.ID] = a
	return a, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *AttendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *AttendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (attendance.Attendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.records {
		if a.EmployeeID == employeeID && a.Date == date {
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

// SetCheckOut implements attendance.AttendanceRepository.
func (r *AttendanceRepository) SetCheckOut(ctx context.Context, id string, at time.Time) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	if a.CheckOut != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}
	a.CheckOut = &at
	a.UpdatedAt = at
	r.records[id] = a
	return a, nil
}

func matchesAttendance(a attendance.Attendance, filter attendance.AttendanceFilter) bool {
	if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
		return false
	}
	if filter.Status != nil && string(a.Status) != *filter.Status {
		return false
	}
	if filter.Date != nil {
		return a.Date == *filter.Date
	}
	if filter.StartDate != nil && a.Date < *filter.StartDate {
		return false
	}
	if filter.EndDate != nil && a.Date > *filter.EndDate {
		return false
	}
	return true
}

// List implements attendance.AttendanceRepository.
func (r *AttendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []attendance.Attendance
	for _, a := range r.records {
		if matchesAttendance(a, filter) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Date != matched[j].Date {
			return matched[i].Date > matched[j].Date
		}
		return matched[i].CheckIn.After(matched[j].CheckIn)
	})

	start, end := page(len(matched), filter.Page, filter.Limit)
	return matched[start:end], int64(len(matched)), nil
}

// CountByDate implements attendance.AttendanceRepository.
func (r *AttendanceRepository) CountByDate(ctx context.Context, date string) (int64, error) {
	_, total, err := r.List(ctx, attendance.AttendanceFilter{Date: &date})
	return total, err
}

// CountByDateAndStatus implements attendance.AttendanceRepository.
func (r *AttendanceRepository) CountByDateAndStatus(ctx context.Context, date string, status attendance.Status) (int64, error) {
	s := string(status)
	_, total, err := r.List(ctx, attendance.AttendanceFilter{Date: &date, Status: &s})
	return total, err
}
