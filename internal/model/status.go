package model

import "fmt"

// Status is the soft-delete marker carried by every entity. Rows are never
// physically removed; "deleting" flips the status to StatusInactive.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending" // roles only
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}

// RoleName is the closed set of roles the permission policy understands.
type RoleName string

const (
	RoleAdministrador RoleName = "Administrador"
	RoleCliente       RoleName = "Cliente"
	RoleAgente        RoleName = "Agente"
)

// Role ids seeded by the initial migration.
const (
	RoleIDAdministrador uint64 = 1
	RoleIDCliente       uint64 = 2
	RoleIDAgente        uint64 = 3
)

// RoleID returns the seeded id for a known role.
func (r RoleName) RoleID() (uint64, bool) {
	switch r {
	case RoleAdministrador:
		return RoleIDAdministrador, true
	case RoleCliente:
		return RoleIDCliente, true
	case RoleAgente:
		return RoleIDAgente, true
	}
	return 0, false
}

func (r RoleName) Valid() bool {
	_, ok := r.RoleID()
	return ok
}

// EmployeeRole parses the label accepted for employee registration. Only
// Administrador and Agente are employee roles.
func EmployeeRole(label string) (RoleName, error) {
	switch RoleName(label) {
	case RoleAdministrador:
		return RoleAdministrador, nil
	case RoleAgente:
		return RoleAgente, nil
	}
	return "", fmt.Errorf("unknown employee role %q", label)
}

// RoleNameForID maps a seeded role id back to its name.
func RoleNameForID(id uint64) (RoleName, bool) {
	switch id {
	case RoleIDAdministrador:
		return RoleAdministrador, true
	case RoleIDCliente:
		return RoleCliente, true
	case RoleIDAgente:
		return RoleAgente, true
	}
	return "", false
}
