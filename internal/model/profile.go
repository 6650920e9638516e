package model

// Client is the traveller profile attached to a Cliente account.
//
// Age is derived from BirthDate at registration time and stored; it is not
// recomputed afterwards.
type Client struct {
	ID             uint64 `json:"id"`              // clients.id
	DPI            string `json:"dpi"`             // clients.dpi (13 digits, unique)
	FirstName      string `json:"first_name"`      // clients.first_name
	LastName       string `json:"last_name"`       // clients.last_name
	Phone          string `json:"phone"`           // clients.phone (8 digits)
	Address        string `json:"address"`         // clients.address
	BirthDate      Date   `json:"birth_date"`      // clients.birth_date
	Nationality    string `json:"nationality"`     // clients.nationality
	Age            int    `json:"age"`             // clients.age
	EmergencyPhone string `json:"emergency_phone"` // clients.emergency_phone
	UserID         uint64 `json:"user_id"`         // clients.user_id -> users.id
}

// Employee is the staff profile attached to an Administrador or Agente account.
type Employee struct {
	ID        uint64 `json:"id"`         // employees.id
	FirstName string `json:"first_name"` // employees.first_name
	LastName  string `json:"last_name"`  // employees.last_name
	DPI       string `json:"dpi"`        // employees.dpi (13 digits, unique)
	NIT       string `json:"nit"`        // employees.nit (13 digits, unique)
	Phone     string `json:"phone"`      // employees.phone
	Age       int    `json:"age"`        // employees.age
	UserID    uint64 `json:"user_id"`    // employees.user_id -> users.id
}

// UserSummary is one row of the user directory listing.
type UserSummary struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    Status `json:"status"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	DPI       string `json:"dpi"`
}

// UserProfile is an account with whichever profile it owns.
type UserProfile struct {
	User     User      `json:"user"`
	Role     string    `json:"role"`
	Client   *Client   `json:"client,omitempty"`
	Employee *Employee `json:"employee,omitempty"`
}
