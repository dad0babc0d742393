package domain

import (
	"time"
)

type UserRole string

const (
	UserRoleOwner UserRole = "owner"
	UserRoleGuest UserRole = "guest"
)

// User is an account allowed to talk to the assistant over the API.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Password  string    `json:"-"` // Hashed password
	Role      UserRole  `json:"role"`
	Status    string    `json:"status"` // Active, Blocked
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
