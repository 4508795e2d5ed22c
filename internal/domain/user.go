package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	// RoleSyndic is the managing agent: full read/write on the condominium
	RoleSyndic UserRole = "syndic"
	// RoleOwner is a unit owner: read-only access
	RoleOwner UserRole = "owner"
)

// ValidRoles is the closed set of user roles
var ValidRoles = map[UserRole]bool{
	RoleSyndic: true,
	RoleOwner:  true,
}

type User struct {
	ID            uuid.UUID `json:"id"`
	Auth0ID       string    `json:"auth0Id"`
	Email         string    `json:"email"`
	Name          *string   `json:"name,omitempty"`
	Role          UserRole  `json:"role"`
	CondominiumID int32     `json:"condominiumId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type UserRepository interface {
	GetByID(id uuid.UUID) (*User, error)
	GetByAuth0ID(auth0ID string) (*User, error)
	Create(user *User) (*User, error)
	UpdateName(auth0ID string, name string) (*User, error)
}
