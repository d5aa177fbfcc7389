package model

import (
	"time"
)

// Notification is a delivered membership event, materialised by the worker.
type Notification struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"index;not null" json:"user_id"`
	Type         string    `gorm:"size:50;not null" json:"type"`
	Message      string    `gorm:"type:text" json:"message"`
	MembershipID string    `gorm:"size:20" json:"membership_id,omitempty"`
	IsRead       bool      `gorm:"default:false" json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
