package auth

import (
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type RegisterRequest struct {
	EmpID           string `json:"emp_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	Department      string `json:"department,omitempty"`
	Designation     string `json:"designation,omitempty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmpID = strings.TrimSpace(r.EmpID)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	if !validator.IsValidEmpID(r.EmpID) {
		errs.Add("emp_id", "emp_id must be 2-32 letters, digits, dashes or underscores")
	}
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if len(r.Name) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}
	if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}
	if r.Phone != "" && !validator.IsValidPhoneNumber(r.Phone) {
		errs.Add("phone", "phone must be 7-15 digits")
	}
	if len(r.Password) < employee.MinPasswordLength {
		errs.Add("password", "password must be at least 8 characters long")
	}
	if r.Password != r.ConfirmPassword {
		errs.Add("confirm_password", "confirm_password does not match password")
	}

	return errs.Err()
}

// LoginRequest authenticates with either the employee id or the email.
type LoginRequest struct {
	EmpID    string `json:"emp_id,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmpID = strings.TrimSpace(r.EmpID)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	if r.EmpID == "" && r.Email == "" {
		errs.Add("emp_id", "emp_id or email is required")
	}
	if r.Email != "" && !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}
	if r.Password == "" {
		errs.Add("password", "password is required")
	}

	return errs.Err()
}

type TokenResponse struct {
	AccessToken string                    `json:"access_token"`
	TokenType   string                    `json:"token_type"`
	ExpiresAt   int64                     `json:"expires_at"`
	Employee    employee.EmployeeResponse `json:"employee"`
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
