package models

import "gorm.io/gorm"

// User represents a user account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Profile information
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`

	// TokenVersion invalidates outstanding JWTs when bumped (password
	// change, forced logout).
	TokenVersion int `gorm:"default:0" json:"-"`
}
