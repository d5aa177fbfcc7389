package dto

import (
	"time"
)

// PaymentDetails is the client-submitted payment record. Amount and
// PaymentDate are pointers so missing fields can be told apart from zero
// values during validation.
type PaymentDetails struct {
	Amount        *float64   `json:"amount"`
	Currency      string     `json:"currency"`
	TransactionID string     `json:"transaction_id"`
	PaymentDate   *time.Time `json:"payment_date"`
	PaymentMethod string     `json:"payment_method"`
	IsUpgrade     bool       `json:"is_upgrade"`
}

type PurchaseRequest struct {
	Tier           string         `json:"tier" binding:"required"`
	PaymentDetails PaymentDetails `json:"payment_details" binding:"required"`
}

type VerifyIDRequest struct {
	MembershipID string `json:"membership_id" binding:"required"`
}

type DowngradeRequest struct {
	Tier string `json:"tier" binding:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

// MembershipSummary is the lifecycle operations' return shape.
type MembershipSummary struct {
	MembershipID     string     `json:"membership_id"`
	Tier             string     `json:"tier"`
	Status           string     `json:"status"`
	StartDate        time.Time  `json:"start_date"`
	ExpiryDate       time.Time  `json:"expiry_date"`
	RenewalCount     int        `json:"renewal_count"`
	UpgradeFrom      *string    `json:"upgrade_from,omitempty"`
	PreviousTier     *string    `json:"previous_tier,omitempty"`
	DowngradeDate    *time.Time `json:"downgrade_date,omitempty"`
	ProratedEstimate *float64   `json:"prorated_estimate,omitempty"`
}

type VerifyResult struct {
	HasActiveMembership bool               `json:"has_active_membership"`
	Membership          *MembershipSummary `json:"membership,omitempty"`
}

type HistoryItem struct {
	MembershipID       string     `json:"membership_id"`
	Tier               string     `json:"tier"`
	Status             string     `json:"status"`
	PurchaseDate       time.Time  `json:"purchase_date"`
	ExpiryDate         time.Time  `json:"expiry_date"`
	Amount             float64    `json:"amount"`
	Currency           string     `json:"currency"`
	PaymentMethod      string     `json:"payment_method"`
	RenewalCount       int        `json:"renewal_count"`
	UpgradeFrom        *string    `json:"upgrade_from,omitempty"`
	DowngradeDate      *time.Time `json:"downgrade_date,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	Notes              string     `json:"notes,omitempty"`
}
