package employee

import "time"

type Employee struct {
	ID           string
	EmpID        string
	Name         string
	Email        string
	Phone        string
	Department   string
	Designation  string
	Role         Role
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
	RoleBoss     Role = "boss"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleAdmin, RoleBoss:
		return true
	}
	return false
}

// CanManage reports whether the role may act on other employees' records.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleBoss
}

// AssignableRoles are the roles that can be granted through the API. The boss
// account only comes from seeding.
var AssignableRoles = []string{string(RoleEmployee), string(RoleAdmin)}
