package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

type EmployeeRepository struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
}

func NewEmployeeRepository() *EmployeeRepository {
	return &EmployeeRepository{employees: make(map[string]employee.Employee)}
}

// Create implements employee.EmployeeRepository.
func (r *EmployeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.Email = strings.ToLower(e.Email)
	if err := r.checkUnique(e); err != nil {
		return employee.Employee{}, err
	}
	e.ID = newID()
	r.employees[e.ID] = e
	return e, nil
}

func (r *EmployeeRepository) checkUnique(e employee.Employee) error {
	for id, other := range r.employees {
		if id == e.ID {
			continue
		}
		if other.EmpID == e.EmpID {
			return employee.ErrEmpIDExists
		}
		if e.Email != "" && other.Email == e.Email {
			return employee.ErrEmailExists
		}
	}
	return nil
}

// GetByID implements employee.EmployeeRepository.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// GetByEmpID implements employee.EmployeeRepository.
func (r *EmployeeRepository) GetByEmpID(ctx context.Context, empID string) (employee.Employee, error) {
	return r.find(func(e employee.Employee) bool { return e.EmpID == empID })
}

// GetByEmail implements employee.EmployeeRepository.
func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (employee.Employee, error) {
	email = strings.ToLower(email)
	return r.find(func(e employee.Employee) bool { return e.Email == email })
}

func (r *EmployeeRepository) find(match func(employee.Employee) bool) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.employees {
		if match(e) {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

// List implements employee.EmployeeRepository.
func (r *EmployeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []employee.Employee
	for _, e := range r.employees {
		if filter.Search != nil && *filter.Search != "" {
			q := strings.ToLower(*filter.Search)
			if !strings.Contains(strings.ToLower(e.Name), q) &&
				!strings.Contains(strings.ToLower(e.EmpID), q) &&
				!strings.Contains(e.Email, q) {
				continue
			}
		}
		if filter.Role != nil && string(e.Role) != *filter.Role {
			continue
		}
		if filter.IsActive != nil && e.IsActive != *filter.IsActive {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].EmpID < matched[j].EmpID })

	start, end := page(len(matched), filter.Page, filter.Limit)
	return matched[start:end], int64(len(matched)), nil
}

// Update implements employee.EmployeeRepository. Password and emp_id are not touched.
func (r *EmployeeRepository) Update(ctx context.Context, e employee.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.employees[e.ID]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.Email = strings.ToLower(e.Email)
	e.EmpID = stored.EmpID
	e.PasswordHash = stored.PasswordHash
	e.CreatedAt = stored.CreatedAt
	if err := r.checkUnique(e); err != nil {
		return err
	}
	r.employees[e.ID] = e
	return nil
}

// UpdatePassword implements employee.EmployeeRepository.
func (r *EmployeeRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.PasswordHash = passwordHash
	r.employees[id] = e
	return nil
}

// CountByRole implements employee.EmployeeRepository.
func (r *EmployeeRepository) CountByRole(ctx context.Context, role employee.Role) (int64, error) {
	return r.count(func(e employee.Employee) bool { return e.Role == role }), nil
}

// CountActive implements employee.EmployeeRepository.
func (r *EmployeeRepository) CountActive(ctx context.Context) (int64, error) {
	return r.count(func(e employee.Employee) bool { return e.IsActive }), nil
}

func (r *EmployeeRepository) count(match func(employee.Employee) bool) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, e := range r.employees {
		if match(e) {
			n++
		}
	}
	return n
}
