package model

import (
	"time"
)

// MembershipLevelNone is the mirror value for users without a current membership.
const MembershipLevelNone = "none"

type User struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Username        string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email           string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash    string    `gorm:"size:255" json:"-"`
	ReferralCode    string    `gorm:"size:20;uniqueIndex" json:"referral_code"`
	ReferredBy      *int64    `gorm:"index" json:"referred_by,omitempty"`
	MembershipLevel string    `gorm:"size:30;default:none" json:"membership_level"` // none or a tier name
	IsAdmin         bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
