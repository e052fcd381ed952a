package mongodb_test

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmployee(empID, email string, role employee.Role) employee.Employee {
	return employee.Employee{
		EmpID:        empID,
		Name:         "Employee " + empID,
		Email:        email,
		Role:         role,
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
	}
}

func TestEmployeeRepository_CreateAndGet(t *testing.T) {
	repo := mongodb.NewEmployeeRepository(newTestDatabase(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newEmployee("BOSS", "boss@example.com", employee.RoleBoss))
	require.NoError(t, err)
	assert.Len(t, created.ID, 24)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "BOSS", byID.EmpID)
	assert.Equal(t, employee.RoleBoss, byID.Role)

	byEmpID, err := repo.GetByEmpID(ctx, "BOSS")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmpID.ID)

	byEmail, err := repo.GetByEmail(ctx, "BOSS@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = repo.GetByEmpID(ctx, "NOBODY")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = repo.GetByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEmployeeRepository_UniqueConstraints(t *testing.T) {
	repo := mongodb.NewEmployeeRepository(newTestDatabase(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, newEmployee("E1", "e1@example.com", employee.RoleEmployee))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newEmployee("E1", "other@example.com", employee.RoleEmployee))
	assert.ErrorIs(t, err, employee.ErrEmpIDExists)

	_, err = repo.Create(ctx, newEmployee("E2", "e1@example.com", employee.RoleEmployee))
	assert.ErrorIs(t, err, employee.ErrEmailExists)
}

func TestEmployeeRepository_ListUpdateCount(t *testing.T) {
	repo := mongodb.NewEmployeeRepository(newTestDatabase(t))
	ctx := context.Background()

	for _, e := range []employee.Employee{
		newEmployee("A1", "alice@example.com", employee.RoleAdmin),
		newEmployee("E1", "bob@example.com", employee.RoleEmployee),
		newEmployee("E2", "carol@example.com", employee.RoleEmployee),
	} {
		_, err := repo.Create(ctx, e)
		require.NoError(t, err)
	}

	search := "bob"
	found, total, err := repo.List(ctx, employee.EmployeeFilter{Search: &search, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, "E1", found[0].EmpID)

	role := string(employee.RoleEmployee)
	page, total, err := repo.List(ctx, employee.EmployeeFilter{Role: &role, Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "E2", page[0].EmpID)

	carol := page[0]
	carol.IsActive = false
	carol.Department = "Finance"
	require.NoError(t, repo.Update(ctx, carol))

	active, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, active)

	admins, err := repo.CountByRole(ctx, employee.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, admins)

	require.NoError(t, repo.UpdatePassword(ctx, carol.ID, "$2a$10$new"))
	updated, err := repo.GetByID(ctx, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$new", updated.PasswordHash)
	assert.Equal(t, "Finance", updated.Department)
}
