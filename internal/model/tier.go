package model

import (
	"time"
)

// Tier names (single source of truth)
const (
	TierBasic        = "Basic"
	TierProfessional = "Professional"
	TierEnterprise   = "Enterprise"
)

// TierFeature is one line of a tier's feature matrix.
type TierFeature struct {
	Name     string `json:"name"`
	Included bool   `json:"included"`
}

// MembershipTier is seeded once from the hard-coded catalog defaults.
// Price and duration are immutable at runtime; only Features may change
// through the admin update endpoint.
type MembershipTier struct {
	ID           int64         `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"size:30;uniqueIndex;not null" json:"name"`
	Price        float64       `gorm:"type:decimal(10,2);not null" json:"price"`
	DurationDays int           `gorm:"not null" json:"duration_days"`
	Features     []TierFeature `gorm:"serializer:json" json:"features"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (MembershipTier) TableName() string {
	return "membership_tiers"
}
