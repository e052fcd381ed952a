package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmpIDExists      = errors.New("employee id already exists")
	ErrEmailExists      = errors.New("email already registered")
	ErrBossImmutable    = errors.New("the boss account cannot be modified this way")
	ErrInvalidRole      = errors.New("invalid role")
	ErrEmployeeInactive = errors.New("employee account is inactive")
)
