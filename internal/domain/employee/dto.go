package employee

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

const MinPasswordLength = 8

type CreateEmployeeRequest struct {
	EmpID       string `json:"emp_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Department  string `json:"department,omitempty"`
	Designation string `json:"designation,omitempty"`
	Role        string `json:"role"`
	Password    string `json:"password"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmpID = strings.TrimSpace(r.EmpID)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)

	if !validator.IsValidEmpID(r.EmpID) {
		errs.Add("emp_id", "emp_id must be 2-32 letters, digits, dashes or underscores")
	}
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}
	if r.Phone != "" && !validator.IsValidPhoneNumber(r.Phone) {
		errs.Add("phone", "phone must be 7-15 digits")
	}
	if r.Role == "" {
		r.Role = string(RoleEmployee)
	}
	if !validator.IsInSlice(r.Role, AssignableRoles) {
		errs.Add("role", "role must be one of: employee, admin")
	}
	if len(r.Password) < MinPasswordLength {
		errs.Add("password", "password must be at least 8 characters")
	}

	return errs.Err()
}

type UpdateEmployeeRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Department  *string `json:"department,omitempty"`
	Designation *string `json:"designation,omitempty"`
	Role        *string `json:"role,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidObjectID(r.ID) {
		errs.Add("id", "id must be a valid identifier")
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &email
		if !validator.IsValidEmail(email) {
			errs.Add("email", "email must be a valid email address")
		}
	}
	if r.Phone != nil && *r.Phone != "" && !validator.IsValidPhoneNumber(*r.Phone) {
		errs.Add("phone", "phone must be 7-15 digits")
	}
	if r.Role != nil && !validator.IsInSlice(*r.Role, AssignableRoles) {
		errs.Add("role", "role must be one of: employee, admin")
	}

	return errs.Err()
}

// Apply copies the set fields onto e.
func (r UpdateEmployeeRequest) Apply(e *Employee) {
	if r.Name != nil {
		e.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		e.Email = *r.Email
	}
	if r.Phone != nil {
		e.Phone = *r.Phone
	}
	if r.Department != nil {
		e.Department = *r.Department
	}
	if r.Designation != nil {
		e.Designation = *r.Designation
	}
	if r.Role != nil {
		e.Role = Role(*r.Role)
	}
	if r.IsActive != nil {
		e.IsActive = *r.IsActive
	}
}

// UpdateProfileRequest is what an employee may change about themselves.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name == nil && r.Email == nil && r.Phone == nil {
		errs.Add("body", "at least one of name, email or phone is required")
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &email
		if !validator.IsValidEmail(email) {
			errs.Add("email", "email must be a valid email address")
		}
	}
	if r.Phone != nil && *r.Phone != "" && !validator.IsValidPhoneNumber(*r.Phone) {
		errs.Add("phone", "phone must be 7-15 digits")
	}

	return errs.Err()
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *ChangePasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CurrentPassword == "" {
		errs.Add("current_password", "current_password is required")
	}
	if len(r.NewPassword) < MinPasswordLength {
		errs.Add("new_password", "new_password must be at least 8 characters")
	}
	if r.NewPassword != r.ConfirmPassword {
		errs.Add("confirm_password", "confirm_password does not match new_password")
	}

	return errs.Err()
}

type ResetPasswordRequest struct {
	ID          string `json:"-"`
	NewPassword string `json:"new_password"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidObjectID(r.ID) {
		errs.Add("id", "id must be a valid identifier")
	}
	if len(r.NewPassword) < MinPasswordLength {
		errs.Add("new_password", "new_password must be at least 8 characters")
	}

	return errs.Err()
}

type EmployeeFilter struct {
	Search   *string `json:"search,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
	if f.Role != nil && !Role(*f.Role).IsValid() {
		errs.Add("role", "role must be one of: employee, admin, boss")
	}

	return errs.Err()
}

type EmployeeResponse struct {
	ID          string `json:"id"`
	EmpID       string `json:"emp_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Department  string `json:"department,omitempty"`
	Designation string `json:"designation,omitempty"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          e.ID,
		EmpID:       e.EmpID,
		Name:        e.Name,
		Email:       e.Email,
		Phone:       e.Phone,
		Department:  e.Department,
		Designation: e.Designation,
		Role:        string(e.Role),
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Employees  []EmployeeResponse `json:"employees"`
}
