package model

// User is a login account. Exactly one Client or Employee profile points at
// it through user_id.
type User struct {
	ID           uint64 `json:"id"`      // users.id
	Email        string `json:"email"`   // users.email (unique, lower-cased)
	PasswordHash string `json:"-"`       // users.password_hash (bcrypt)
	RoleID       uint64 `json:"role_id"` // users.role_id -> roles.id
	Status       Status `json:"status"`  // users.status
}

// Role is a row of the roles table.
type Role struct {
	ID     uint64 `json:"id"`     // roles.id
	Name   string `json:"name"`   // roles.name (unique among active roles)
	Status Status `json:"status"` // roles.status
}

// Identity is what a decoded access token says about the caller. It is the
// only input the permission policy receives about who is acting.
type Identity struct {
	UserID uint64
	Email  string
	Role   RoleName
}
