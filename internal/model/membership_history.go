package model

import (
	"time"
)

// MembershipHistory is the append-only lifecycle ledger. An entry is created
// on every purchase, upgrade and downgrade; entries are never deleted and
// only their Status field transitions afterwards.
type MembershipHistory struct {
	ID                   int64      `gorm:"primaryKey" json:"id"`
	UserID               int64      `gorm:"index;not null" json:"user_id"`
	MembershipID         string     `gorm:"size:20;index;not null" json:"membership_id"`
	Tier                 string     `gorm:"size:30;not null" json:"tier"`
	PurchaseDate         time.Time  `gorm:"not null" json:"purchase_date"`
	ExpiryDate           time.Time  `gorm:"not null" json:"expiry_date"`
	Status               string     `gorm:"size:20;default:active;index" json:"status"`
	Amount               float64    `gorm:"type:decimal(10,2)" json:"amount"`
	Currency             string     `gorm:"size:10" json:"currency"`
	TransactionID        string     `gorm:"size:100" json:"transaction_id"`
	PaymentDate          time.Time  `json:"payment_date"`
	PaymentMethod        string     `gorm:"size:20" json:"payment_method"`
	PreviousMembershipID *string    `gorm:"size:20" json:"previous_membership_id,omitempty"`
	RenewalCount         int        `gorm:"default:0" json:"renewal_count"`
	UpgradeFrom          *string    `gorm:"size:30" json:"upgrade_from,omitempty"`
	DowngradeDate        *time.Time `json:"downgrade_date,omitempty"`
	CancellationReason   *string    `gorm:"size:255" json:"cancellation_reason,omitempty"`
	Notes                string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

func (MembershipHistory) TableName() string {
	return "membership_histories"
}
