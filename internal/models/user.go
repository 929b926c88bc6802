package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the single account role of a user. Roles are mutually exclusive;
// only employees carry a prepaid balance.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// User represents an account in the system
type User struct {
	ID           int64           `db:"id" json:"id"`
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"-"`
	FirstName    string          `db:"first_name" json:"first_name"`
	LastName     string          `db:"last_name" json:"last_name"`
	Role         Role            `db:"role" json:"role"`
	Balance      decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsEmployee reports whether the user has the employee role
func (u *User) IsEmployee() bool {
	return u.Role == RoleEmployee
}

// NewUser creates a new user with the given role
func NewUser(firstName, lastName, email, passwordHash string, role Role) *User {
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		Balance:      decimal.Zero,
		CreatedAt:    GetCurrentTime(),
	}
}
