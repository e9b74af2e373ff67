package models

import "time"

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleBuyer     UserRole = "buyer"
	RoleInspector UserRole = "inspector"
)

// User is a row of the profiles table.
type User struct {
	ID           uint     `gorm:"primaryKey"`
	FullName     string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "profiles"
}
