package models

import "gorm.io/gorm"

// User is a shop account. Role is either auth.RoleAdmin or auth.RoleUser.
type User struct {
	gorm.Model
	Name     string `gorm:"size:255;not null"             json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null"             json:"-"` // bcrypt hash, never serialised
	Role     string `gorm:"size:50;default:USER"          json:"role"`
	Phone    string `gorm:"size:50"                       json:"phone"`
	Address  string `gorm:"type:text"                     json:"address"`
}
