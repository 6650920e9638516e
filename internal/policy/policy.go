// Package policy decides whether a role may perform an action. It is a pure
// table lookup with no I/O; services consult it before any mutation.
package policy

import (
	"fmt"

	"github.com/iliyamo/airline-reservation/internal/model"
)

type Action string

const (
	UserAdd    Action = "user:add"
	UserList   Action = "user:list"
	UserFind   Action = "user:find"
	UserUpdate Action = "user:update"
	UserDelete Action = "user:delete"

	RoleAdd    Action = "role:add"
	RoleList   Action = "role:list"
	RoleUpdate Action = "role:update"
	RoleDelete Action = "role:delete"

	FlightCreate Action = "flight:create"
	FlightUpdate Action = "flight:update"
	FlightDelete Action = "flight:delete"

	ReservationCreate  Action = "reservation:create"
	ReservationListOwn Action = "reservation:list-own"
	ReservationCancel  Action = "reservation:cancel"
)

var (
	adminOnly   = roles(model.RoleAdministrador)
	staff       = roles(model.RoleAdministrador, model.RoleAgente)
	clientsOnly = roles(model.RoleCliente)
	everyone    = roles(model.RoleAdministrador, model.RoleAgente, model.RoleCliente)
)

var table = map[Action]map[model.RoleName]bool{
	UserList:   staff,
	UserFind:   staff,
	UserUpdate: staff,
	UserDelete: adminOnly,

	RoleAdd:    adminOnly,
	RoleList:   adminOnly,
	RoleUpdate: adminOnly,
	RoleDelete: adminOnly,

	FlightCreate: staff,
	FlightUpdate: staff,
	FlightDelete: staff,

	ReservationCreate:  clientsOnly,
	ReservationListOwn: clientsOnly,
	// ownership of the reservation is checked by the caller for Cliente
	ReservationCancel: everyone,
}

// who may create an account of the target role
var addUser = map[model.RoleName]map[model.RoleName]bool{
	model.RoleCliente:       staff,
	model.RoleAgente:        adminOnly,
	model.RoleAdministrador: adminOnly,
}

func roles(rs ...model.RoleName) map[model.RoleName]bool {
	m := make(map[model.RoleName]bool, len(rs))
	for _, r := range rs {
		m[r] = true
	}
	return m
}

// Decision is the outcome of a policy check. Reason is empty when allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(format string, args ...any) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// Decide checks actor against action. For UserAdd, target is the role of the
// account being created; other actions ignore it.
func Decide(actor model.RoleName, action Action, target model.RoleName) Decision {
	if !actor.Valid() {
		return deny("unknown role %q", actor)
	}
	if action == UserAdd {
		allowed, ok := addUser[target]
		if !ok {
			return deny("unknown target role %q", target)
		}
		if !allowed[actor] {
			return deny("role %s cannot create %s accounts", actor, target)
		}
		return allow()
	}
	allowed, ok := table[action]
	if !ok {
		return deny("unknown action %q", action)
	}
	if !allowed[actor] {
		return deny("role %s is not allowed to perform %s", actor, action)
	}
	return allow()
}

// Can is Decide for actions that have no target role.
func Can(actor model.RoleName, action Action) Decision {
	return Decide(actor, action, "")
}
