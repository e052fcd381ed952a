package employee

import "context"

// EmployeeService defines the employee management operations available to admins and the boss
type EmployeeService interface {
	// ListEmployees lists employees with search, role and status filters
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// GetEmployee retrieves a single employee by ID
	GetEmployee(ctx context.Context, id string) (EmployeeResponse, error)

	// CreateEmployee creates an employee or admin account
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	// UpdateEmployee updates profile, role and active flag. The boss cannot be demoted or deactivated.
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// ResetPassword sets a new password for an employee
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}
