package model

import (
	"time"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        *string   `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	AvatarURL    string    `gorm:"size:500" json:"avatar_url"`
	GithubID     *string   `gorm:"column:github_id;size:50;uniqueIndex" json:"-"`
	Role         string    `gorm:"size:20;default:customer;index" json:"role"` // customer, admin
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin 是否为后台管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
