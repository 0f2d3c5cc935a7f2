package models

import (
	"gorm.io/gorm"
)

// Message is scoped to one appointment; sender and receiver are always the
// appointment's two participants. Messages are append-only: never edited,
// never deleted, and Read flips false to true exactly once.
type Message struct {
	gorm.Model
	AppointmentID uint   `gorm:"column:appointment_id;not null;index" json:"appointment_id"`
	SenderID      uint   `gorm:"column:sender_id;not null" json:"sender_id"`
	SenderRole    string `gorm:"column:sender_role;size:20;not null" json:"sender_role"`
	ReceiverID    uint   `gorm:"column:receiver_id;not null" json:"receiver_id"`
	ReceiverRole  string `gorm:"column:receiver_role;size:20;not null" json:"receiver_role"`
	Content       string `gorm:"column:content;type:text;not null" json:"content"`
	Read          bool   `gorm:"column:read;default:false" json:"read"`
}

func (Message) TableName() string {
	return "messages"
}
