package auth

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context) (employee.EmployeeResponse, error)
	UpdateProfile(ctx context.Context, req employee.UpdateProfileRequest) (employee.EmployeeResponse, error)
	ChangePassword(ctx context.Context, req employee.ChangePasswordRequest) error
	StreamToken(ctx context.Context) (StreamTokenResponse, error)
}
