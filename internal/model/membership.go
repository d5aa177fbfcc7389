package model

import (
	"time"
)

// Membership statuses. StatusSuperseded is used only on history entries
// replaced by a newer entry for the same membership ID (downgrades).
const (
	StatusActive     = "active"
	StatusExpired    = "expired"
	StatusCancelled  = "cancelled"
	StatusUpgraded   = "upgraded"
	StatusSuperseded = "superseded"
)

// Payment methods accepted on purchase.
const (
	PaymentCreditCard   = "credit_card"
	PaymentDebitCard    = "debit_card"
	PaymentBankTransfer = "bank_transfer"
	PaymentOther        = "other"
)

// Membership is the authoritative current-membership record, at most one
// per user. The user row mirrors Tier in membership_level.
type Membership struct {
	ID                   int64      `gorm:"primaryKey" json:"id"`
	UserID               int64      `gorm:"uniqueIndex;not null" json:"user_id"`
	MembershipID         string     `gorm:"size:20;uniqueIndex;not null" json:"membership_id"`
	Tier                 string     `gorm:"size:30;not null" json:"tier"`
	Status               string     `gorm:"size:20;default:active;index" json:"status"`
	StartDate            time.Time  `gorm:"not null" json:"start_date"`
	ExpiryDate           time.Time  `gorm:"not null;index" json:"expiry_date"`
	Amount               float64    `gorm:"type:decimal(10,2)" json:"amount"`
	Currency             string     `gorm:"size:10" json:"currency"`
	TransactionID        string     `gorm:"size:100" json:"transaction_id"`
	PaymentDate          time.Time  `json:"payment_date"`
	PaymentMethod        string     `gorm:"size:20" json:"payment_method"`
	PreviousMembershipID *string    `gorm:"size:20" json:"previous_membership_id,omitempty"`
	PreviousTier         *string    `gorm:"size:30" json:"previous_tier,omitempty"`
	DowngradeDate        *time.Time `json:"downgrade_date,omitempty"`
	RenewalCount         int        `gorm:"default:0" json:"renewal_count"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (Membership) TableName() string {
	return "memberships"
}
