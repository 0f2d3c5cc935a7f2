package models

import (
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// Placeholder values substituted when a referenced account was deleted after
// the appointment was created. List queries must never fail on a dangling id.
const (
	DeletedTeacherName = "Deleted Teacher"
	DeletedUserName    = "Deleted User"
	NoEmail            = "No Email"
	UnknownDepartment  = "Unknown"
)

// Appointment keeps date and times as the naive strings the clients send
// ("2006-01-02" and zero-padded "15:04"). Appointments are historical records
// and are never deleted, even when a participant account is.
type Appointment struct {
	gorm.Model
	TeacherID uint   `gorm:"column:teacher_id;not null;index" json:"teacher_id"`
	StudentID uint   `gorm:"column:student_id;not null;index" json:"student_id"`
	Date      string `gorm:"column:date;size:10;not null" json:"date"`
	StartTime string `gorm:"column:start_time;size:5;not null" json:"startTime"`
	EndTime   string `gorm:"column:end_time;size:5;not null" json:"endTime"`
	Subject   string `gorm:"column:subject;size:255;not null" json:"subject"`
	Message   string `gorm:"column:message;type:text" json:"message"`
	Status    string `gorm:"column:status;size:20;not null;default:pending" json:"status"`
}

// StudentAppointmentView is an appointment as listed for its student, with
// the teacher side resolved or degraded to placeholders.
type StudentAppointmentView struct {
	ID                uint   `json:"id"`
	Date              string `json:"date"`
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
	Subject           string `json:"subject"`
	Message           string `json:"message"`
	Status            string `json:"status"`
	TeacherID         uint   `json:"teacher_id"`
	TeacherName       string `json:"teacherName"`
	TeacherEmail      string `json:"teacherEmail"`
	TeacherDepartment string `json:"teacherDepartment"`
	TeacherProfilePic string `json:"teacherProfilePic,omitempty"`
}

// TeacherAppointmentView mirrors StudentAppointmentView for the other side.
type TeacherAppointmentView struct {
	ID                uint   `json:"id"`
	Date              string `json:"date"`
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
	Subject           string `json:"subject"`
	Message           string `json:"message"`
	Status            string `json:"status"`
	StudentID         uint   `json:"student_id"`
	StudentName       string `json:"studentName"`
	StudentEmail      string `json:"studentEmail"`
	StudentProfilePic string `json:"studentProfilePic,omitempty"`
}
