package employee

import "context"

type EmployeeRepository interface {
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByEmpID(ctx context.Context, empID string) (Employee, error)
	GetByEmail(ctx context.Context, email string) (Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	Update(ctx context.Context, e Employee) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	CountByRole(ctx context.Context, role Role) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}
