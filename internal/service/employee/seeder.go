package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
)

type SeedConfig struct {
	EmpID    string
	Password string
	Name     string
	Email    string
}

// Seeder creates the single boss account when it does not exist yet.
type Seeder struct {
	employeeRepo employee.EmployeeRepository
	cfg          SeedConfig
}

func NewSeeder(employeeRepo employee.EmployeeRepository, cfg SeedConfig) *Seeder {
	return &Seeder{employeeRepo: employeeRepo, cfg: cfg}
}

// EnsureBoss reports whether the boss account was created by this call.
// Running it again, or from two processes at once, leaves exactly one boss.
func (s *Seeder) EnsureBoss(ctx context.Context) (bool, error) {
	_, err := s.employeeRepo.GetByEmpID(ctx, s.cfg.EmpID)
	if err == nil {
		slog.Debug("boss account already present", "emp_id", s.cfg.EmpID)
		return false, nil
	}
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		return false, fmt.Errorf("failed to look up boss account: %w", err)
	}

	hash, err := HashPassword(s.cfg.Password)
	if err != nil {
		return false, err
	}

	now := time.Now()
	_, err = s.employeeRepo.Create(ctx, employee.Employee{
		EmpID:        s.cfg.EmpID,
		Name:         s.cfg.Name,
		Email:        s.cfg.Email,
		Role:         employee.RoleBoss,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, employee.ErrEmpIDExists) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create boss account: %w", err)
	}

	slog.Info("Boss account created", "emp_id", s.cfg.EmpID)
	return true, nil
}
