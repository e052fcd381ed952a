package employee

import (
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateEmployeeRequest_Validate(t *testing.T) {
	req := CreateEmployeeRequest{
		EmpID:    " EMP-001 ",
		Name:     "Jane",
		Email:    " Jane@Example.com ",
		Password: "supersecret",
	}
	require.NoError(t, req.Validate())
	assert.Equal(t, "EMP-001", req.EmpID)
	assert.Equal(t, "jane@example.com", req.Email)
	assert.Equal(t, string(RoleEmployee), req.Role)
}

func TestCreateEmployeeRequest_RejectsBossRole(t *testing.T) {
	req := CreateEmployeeRequest{EmpID: "X1", Name: "X", Email: "x@example.com", Password: "supersecret", Role: "boss"}

	err := req.Validate()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "role")
}

func TestCreateEmployeeRequest_CollectsAllErrors(t *testing.T) {
	req := CreateEmployeeRequest{EmpID: "!", Email: "nope", Password: "short", Phone: "12"}

	var verrs validator.ValidationErrors
	require.ErrorAs(t, req.Validate(), &verrs)
	fields := verrs.ToMap()
	for _, f := range []string{"emp_id", "name", "email", "password", "phone"} {
		assert.Contains(t, fields, f)
	}
}

func TestUpdateEmployeeRequest_ValidateAndApply(t *testing.T) {
	req := UpdateEmployeeRequest{
		ID:       "65a1f0c2e4b0a1b2c3d4e5f6",
		Name:     ptr(" New Name "),
		Email:    ptr("NEW@example.com"),
		Role:     ptr("admin"),
		IsActive: ptr(false),
	}
	require.NoError(t, req.Validate())

	e := Employee{Name: "Old", Email: "old@example.com", Role: RoleEmployee, IsActive: true, Department: "Ops"}
	req.Apply(&e)

	assert.Equal(t, "New Name", e.Name)
	assert.Equal(t, "new@example.com", e.Email)
	assert.Equal(t, RoleAdmin, e.Role)
	assert.False(t, e.IsActive)
	assert.Equal(t, "Ops", e.Department)
}

func TestUpdateEmployeeRequest_InvalidID(t *testing.T) {
	req := UpdateEmployeeRequest{ID: "42"}
	assert.Error(t, req.Validate())
}

func TestChangePasswordRequest_Validate(t *testing.T) {
	ok := ChangePasswordRequest{CurrentPassword: "old", NewPassword: "newpassword", ConfirmPassword: "newpassword"}
	assert.NoError(t, ok.Validate())

	mismatch := ChangePasswordRequest{CurrentPassword: "old", NewPassword: "newpassword", ConfirmPassword: "other"}
	var verrs validator.ValidationErrors
	require.ErrorAs(t, mismatch.Validate(), &verrs)
	assert.Contains(t, verrs.ToMap(), "confirm_password")
}

func TestEmployeeFilter_Defaults(t *testing.T) {
	f := EmployeeFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)

	bad := EmployeeFilter{Limit: 500, Role: ptr("intern")}
	assert.Error(t, bad.Validate())
}

func TestRole(t *testing.T) {
	assert.True(t, RoleBoss.IsValid())
	assert.False(t, Role("owner").IsValid())
	assert.True(t, RoleAdmin.CanManage())
	assert.True(t, RoleBoss.CanManage())
	assert.False(t, RoleEmployee.CanManage())
}

func TestNewEmployeeResponse_OmitsPasswordHash(t *testing.T) {
	resp := NewEmployeeResponse(Employee{ID: "1", EmpID: "E1", PasswordHash: "$2a$10$secret", Role: RoleAdmin})
	assert.Equal(t, "admin", resp.Role)
	assert.NotContains(t, []string{resp.Name, resp.Email, resp.Phone}, "$2a$10$secret")
}
