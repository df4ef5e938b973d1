package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Faculty UserRole = "faculty"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:100;unique;not null" json:"email"`
	Password   string    `gorm:"size:100;not null" json:"-"`
	Role       UserRole  `gorm:"size:20;default:'student'" json:"role"`
	AvatarURL  string    `gorm:"size:255" json:"avatarUrl"`
	Title      string    `gorm:"size:100" json:"title"`
	Department string    `gorm:"size:100" json:"department"`
	Disabled   bool      `gorm:"default:false" json:"disabled"`
	LastLogin  time.Time `json:"lastLogin"`
	LastSeen   time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
