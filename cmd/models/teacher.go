package models

import (
	"gorm.io/gorm"
)

type Teacher struct {
	gorm.Model
	Name         string `gorm:"column:name;size:255;not null" json:"name"`
	Email        string `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`
	Department   string `gorm:"column:department;size:100;not null" json:"department"`
	ProfilePic   string `gorm:"column:profile_pic;size:500" json:"profile_pic"`
	IsApproved   bool   `gorm:"column:is_approved;default:false" json:"is_approved"`

	Availability []AvailabilitySlot `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"availability"`
}

func (Teacher) TableName() string {
	return "teachers"
}

// AvailabilitySlot is one weekly recurring window. The whole list is owned by
// its teacher and replaced wholesale on every update, never patched.
type AvailabilitySlot struct {
	gorm.Model
	TeacherID uint   `gorm:"column:teacher_id;not null;index" json:"-"`
	Day       string `gorm:"column:day;size:20;not null" json:"day"`
	StartTime string `gorm:"column:start_time;size:5;not null" json:"startTime"`
	EndTime   string `gorm:"column:end_time;size:5;not null" json:"endTime"`
	Position  int    `gorm:"column:position;not null;default:0" json:"-"`
}

func (AvailabilitySlot) TableName() string {
	return "availability_slots"
}
