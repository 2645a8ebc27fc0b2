package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles a user can hold
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// User represents a restaurant customer or an administrator
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `json:"name"`
	Role         string         `gorm:"not null;default:'client';index" json:"role"` // "client" or "admin"
	LastLoginAt  *time.Time     `json:"lastLoginAt"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	return role == RoleClient || role == RoleAdmin
}
