package models

import (
	"gorm.io/gorm"
)

const (
	RoleUser    = "user"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User covers both students (role "user") and administrators (role "admin").
// Teachers live in their own table, see teacher.go.
type User struct {
	gorm.Model
	Username     string `gorm:"column:username;size:255;not null;uniqueIndex" json:"username"`
	Email        string `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role         string `gorm:"column:role;size:50;not null;default:user" json:"role"`
	ProfilePic   string `gorm:"column:profile_pic;size:500" json:"profile_pic"`
	IsApproved   bool   `gorm:"column:is_approved;default:false" json:"is_approved"`
}
