package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
	RoleEndUser  = "end_user"
)

// Principal is the resolved identity attached to an authenticated call.
// It is a snapshot of the token claims, not a live database lookup.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
	// WalletAddress is populated for end users only.
	WalletAddress string `json:"wallet_address,omitempty"`
}

// Staff models a back-office principal: a manager or an employee.
// The two classes share a shape but live in separate collections so the
// login cascade can probe them independently.
type Staff struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EndUser models a self-registered mobile user. WalletAddress is immutable
// after creation and, together with NationalID and Username, unique.
type EndUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	WalletAddress string    `json:"wallet_address"`
	NationalID    string    `json:"national_id"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Principal converts a stored staff row into a claims snapshot.
func (s *Staff) Principal(role string) Principal {
	return Principal{ID: s.ID, Username: s.Username, Role: role}
}

// Principal converts a stored end user into a claims snapshot.
func (u *EndUser) Principal() Principal {
	return Principal{
		ID:            u.ID,
		Username:      u.Username,
		Role:          RoleEndUser,
		WalletAddress: u.WalletAddress,
	}
}
