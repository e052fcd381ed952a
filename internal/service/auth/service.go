package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	employeeservice "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	jwtService   jwt.Service
	now          func() time.Time
}

func NewAuthService(employeeRepo employee.EmployeeRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		employeeRepo: employeeRepo,
		jwtService:   jwtService,
		now:          time.Now,
	}
}

func getClaimsFromContext(ctx context.Context) (jwt.Claims, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return jwt.Claims{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	return claims, nil
}

func (a *AuthServiceImpl) issueToken(e employee.Employee) (auth.TokenResponse, error) {
	token, expiresAt, err := a.jwtService.GenerateAccessToken(jwt.Claims{
		EmployeeID: e.ID,
		EmpID:      e.EmpID,
		Role:       string(e.Role),
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Employee:    employee.NewEmployeeResponse(e),
	}, nil
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	hash, err := employeeservice.HashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	now := a.now()
	created, err := a.employeeRepo.Create(ctx, employee.Employee{
		EmpID:        req.EmpID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Department:   req.Department,
		Designation:  req.Designation,
		Role:         employee.RoleEmployee,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, employee.ErrEmpIDExists) || errors.Is(err, employee.ErrEmailExists) {
			return auth.TokenResponse{}, err
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to register employee: %w", err)
	}

	slog.Info("employee registered", "emp_id", created.EmpID)
	return a.issueToken(created)
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	var (
		found employee.Employee
		err   error
	)
	if req.EmpID != "" {
		found, err = a.employeeRepo.GetByEmpID(ctx, req.EmpID)
	} else {
		found, err = a.employeeRepo.GetByEmail(ctx, req.Email)
	}
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !found.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	return a.issueToken(found)
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.ErrInvalidToken
	}

	verified, err := jwtauth.VerifyToken(a.jwtService.JWTAuth(), token)
	if err != nil {
		return auth.ErrInvalidToken
	}

	a.jwtService.RevokeToken(token, verified.Expiration().Unix())
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (employee.EmployeeResponse, error) {
	current, err := a.currentEmployee(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(current), nil
}

func (a *AuthServiceImpl) currentEmployee(ctx context.Context) (employee.Employee, error) {
	claims, err := getClaimsFromContext(ctx)
	if err != nil {
		return employee.Employee{}, err
	}

	current, err := a.employeeRepo.GetByID(ctx, claims.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return current, nil
}

// UpdateProfile implements auth.AuthService.
func (a *AuthServiceImpl) UpdateProfile(ctx context.Context, req employee.UpdateProfileRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	current, err := a.currentEmployee(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if req.Name != nil {
		current.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		current.Email = *req.Email
	}
	if req.Phone != nil {
		current.Phone = *req.Phone
	}
	current.UpdatedAt = a.now()

	if err := a.employeeRepo.Update(ctx, current); err != nil {
		if errors.Is(err, employee.ErrEmailExists) {
			return employee.EmployeeResponse{}, err
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update profile: %w", err)
	}

	return employee.NewEmployeeResponse(current), nil
}

// ChangePassword implements auth.AuthService.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, req employee.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	current, err := a.currentEmployee(ctx)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrIncorrectPassword
	}

	hash, err := employeeservice.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := a.employeeRepo.UpdatePassword(ctx, current.ID, hash); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// StreamToken implements auth.AuthService.
func (a *AuthServiceImpl) StreamToken(ctx context.Context) (auth.StreamTokenResponse, error) {
	claims, err := getClaimsFromContext(ctx)
	if err != nil {
		return auth.StreamTokenResponse{}, err
	}

	token, expiresIn, err := a.jwtService.GenerateStreamToken(claims)
	if err != nil {
		return auth.StreamTokenResponse{}, fmt.Errorf("failed to create stream token: %w", err)
	}
	return auth.StreamTokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}
