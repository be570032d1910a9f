package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user role within a tenant.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// User is an admin-console user. OwnerID is the tenant boundary: every query
// made on this user's behalf filters by it.
type User struct {
	ID         uuid.UUID       `json:"id"`
	OwnerID    uuid.UUID       `json:"ownerId"`
	Email      string          `json:"email"`
	Username   string          `json:"username"`
	Password   string          `json:"-"`
	FullName   string          `json:"fullName"`
	Role       Role            `json:"role"`
	Active     bool            `json:"active"`
	PageAccess map[string]bool `json:"pageAccess"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID         uuid.UUID       `json:"id"`
	OwnerID    uuid.UUID       `json:"ownerId"`
	Email      string          `json:"email"`
	Username   string          `json:"username"`
	FullName   string          `json:"fullName"`
	Role       Role            `json:"role"`
	Active     bool            `json:"active"`
	PageAccess map[string]bool `json:"pageAccess"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:         u.ID,
		OwnerID:    u.OwnerID,
		Email:      u.Email,
		Username:   u.Username,
		FullName:   u.FullName,
		Role:       u.Role,
		Active:     u.Active,
		PageAccess: u.PageAccess,
		CreatedAt:  u.CreatedAt,
	}
}

// Tenant is an organization owning all of its users, events and visitors.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
